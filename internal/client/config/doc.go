// Package config loads runtime configuration for the reader client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-e/-env, or ./.env when present) and READKEEPER_*
//     environment variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string        base URL of the backing reading service
//	-l string        listen address of the local gateway
//	-d string        path of the local SQLite database
//	-i int           online status check interval (seconds)
//	-log-level str   debug, info, warn or error
//	-log-format str  text or json
//	-headless        serve the gateway without the REPL
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "2s" or integer
// nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "listen_addr": "127.0.0.1:8080",
//	  "progress_poll_interval": "2s",
//	  "anchor_offset": 60
//	}
//
// The resulting Config is validated with struct tags before use.
package config
