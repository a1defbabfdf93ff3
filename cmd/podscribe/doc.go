// Package main hosts the podscribe CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into feed
// fetches, transcription job submissions, reconciliation passes, state
// listings, and configuration scaffolding. It centralizes configuration
// resolution, file locking, and structured logging setup so subcommands can
// focus on user experience instead of wiring.
package main
