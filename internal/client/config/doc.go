// Package config loads runtime configuration for the authdash CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / --config (see parseJson).
//  3. Environment variables (AUTHDASH_*) and command-line flags, applied by
//     the cli package on top of the loaded Config.
//
// # JSON schema
//
// Every key is optional; absent keys keep the value from the previous stage.
// request_timeout is a timex.Duration, so it may be a string like "5s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "base_path": "/api/auth",
//	  "storage_path": "session.db",
//	  "request_timeout": "5s",
//	  "log_level": "info",
//	  "output": "table"
//	}
package config
