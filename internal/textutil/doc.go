// Package textutil provides filename sanitization and slug helpers used when
// deriving output paths and channel names from feed metadata.
package textutil
