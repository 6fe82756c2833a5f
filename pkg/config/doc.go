// Package config loads the commercemock server configuration.
//
// Configuration is layered. Defaults come first, then an optional YAML or
// JSON file, then COMMERCEMOCK_* environment variables, then CLI flags:
//
//	cfg, err := config.Load("commercemock.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// A complete file looks like:
//
//	server:
//	  host: 0.0.0.0
//	  port: 8989
//	  readTimeout: 30s
//	  writeTimeout: 30s
//	log:
//	  level: info
//	  format: text
//	seed:
//	  files: ["fixtures/**/*.yaml"]
//	query:
//	  defaultLimit: 20
//	  maxLimit: 500
//	strictDrafts: true
//
// Environment variables use the section and field names, for example
// COMMERCEMOCK_SERVER_PORT, COMMERCEMOCK_LOG_LEVEL, COMMERCEMOCK_SEED_FILES
// (comma separated) and COMMERCEMOCK_STRICT_DRAFTS.
package config
