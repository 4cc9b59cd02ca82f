// Package cli constructs the licenses-ci command-line interface. It wires the
// Cobra root command with the Viper configuration loader and the zap logger,
// then registers the cache and status commands.
package cli
