// Package config loads, validates, and normalizes clipforge configuration
// from a TOML file. A sample configuration is embedded for `config init`.
package config
