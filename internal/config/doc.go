// Package config resolves the bootstrapper's settings.
//
// # Sources
//
// Settings are layered, later sources winning:
//
//  1. Defaults()
//  2. an optional Lua file, ~/.config/suntheme/bootstrap.lua by default
//  3. the SUNTHEME_INSTALL_DIR environment variable
//  4. command-line flags, applied by the caller
//
// Validate runs once all layers are applied.
//
// # Lua Files
//
// The file assigns a global "bootstrap" table:
//
//	bootstrap = {
//	  repository  = "lucianlavric/suntheme",
//	  install_dir = platform.is_macos and "/opt/homebrew/bin" or "/usr/local/bin",
//	  strategy    = "asset",
//	  timeout     = 60,
//	}
//
// It runs in a gopher-lua sandbox without os, io, require, load*, debug or
// raw table access, under a parse timeout. The read-only "platform" table
// from the platform package is injected so a file can branch per host.
// Unknown keys are rejected so typos do not pass silently.
package config
