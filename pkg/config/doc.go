// Package config loads and validates the TensorZero client configuration
// used by the tensorzero CLI and by embedding applications.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.Load("tensorzero.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadWithEnvOverrides("tensorzero.yaml")
//
// Default() returns the configuration an empty file would produce.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TENSORZERO_SECTION_FIELD.
// For example:
//
//   - TENSORZERO_GATEWAY_BASE_URL overrides gateway.base_url
//   - TENSORZERO_GATEWAY_API_KEY overrides gateway.api_key
//   - TENSORZERO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation collects every violation rather than stopping at the first, and
// reports field paths:
//
//	configuration validation failed with 2 errors:
//	  - gateway.base_url: unsupported scheme "ftp": must be http or https
//	  - history.retention.days: retention days must be non-negative
//
// # Hot Reload
//
// Watch re-loads the file on change and delivers snapshots over a channel:
//
//	w, err := config.Watch("tensorzero.yaml", logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	for cfg := range w.Updates() {
//	    applyConfig(cfg)
//	}
//
// # Example Configuration
//
// A minimal configuration file (the API key is usually supplied through
// TENSORZERO_GATEWAY_API_KEY rather than written to disk):
//
//	gateway:
//	  base_url: "http://localhost:3000"
//
//	history:
//	  enabled: true
//	  backend: "sqlite"
//	  sqlite:
//	    path: "~/.tensorzero/history.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "console"
//
//	defaults:
//	  function_name: "extract_entities"
//	  tags:
//	    team: "platform"
package config
