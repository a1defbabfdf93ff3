// Package config loads, normalizes, and validates podscribe configuration.
//
// Configuration is a single TOML file (default ~/.config/podscribe/config.toml,
// with podscribe.toml in the working directory as a project-local fallback).
// Load applies defaults first, decodes the file over them, expands ~ in paths,
// overlays speech credentials from the environment, and validates the result,
// so downstream packages can rely on a fully-resolved Config.
package config
