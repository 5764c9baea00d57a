// Package host simulates the environment providers are injected into.
package host
