// Package config loads and validates shadowlist configuration from a TOML
// file, applying defaults and expanding user-relative paths. A missing config
// file is not an error; the defaults are complete enough to run with nothing
// but an OAuth token.
package config
