// Package cli provides the command-line interface for commercemock.
//
// Commands:
//   - serve: start the mock API (default when no command is given)
//   - validate: check a configuration file and its seed fixtures
//   - version: print build information
//
// Configuration is read from --config, then COMMERCEMOCK_* environment
// variables, then flags. See package config for the file format.
package cli
