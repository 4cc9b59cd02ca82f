// Package ui renders command lifecycle events for people reading CI logs.
package ui
