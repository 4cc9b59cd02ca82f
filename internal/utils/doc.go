// Package utils houses the configuration loader and logger factory shared by
// the licenses-ci commands. ConfigurationLoader layers embedded defaults, an
// optional configuration file, and environment variables through Viper;
// LoggerFactory builds zap loggers in structured or console form.
package utils
