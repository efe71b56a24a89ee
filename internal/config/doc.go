// Package config loads nsevent settings.
//
// Settings come from three places, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, if present
//  3. NSEVENT_* environment variables
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[registry]
//	prune = true
//	recover_panics = true
//	continue_on_error = false
package config
