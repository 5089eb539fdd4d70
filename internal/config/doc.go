// Package config loads the application configuration.
//
// Values are resolved in this order, later sources winning:
//
//	1. Default() values
//	2. A YAML file (config.yaml, configs/config.yaml or ENERGY_CONFIG_FILE)
//	3. Environment variables prefixed with ENERGY_, e.g. ENERGY_SUMMARY_YEARS=10
//
// The resolved Config is validated with struct tags before use. Paths turns
// the relative directories into absolute locations under an explicit base
// directory, so nothing depends on where the process happens to run.
package config
