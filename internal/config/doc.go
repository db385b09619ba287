// Package config provides environment-based configuration plus the on-disk
// accounts file that feeds the session pool.
//
// Runtime settings (port, log level, upstream URLs) come from environment
// variables with sensible defaults. The account list lives in a separate
// JSON file read through viper, so credentials never pass through the
// environment.
package config
