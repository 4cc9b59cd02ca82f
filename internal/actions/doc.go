// Package actions reads the GitHub Actions runtime context and writes workflow annotations.
package actions
