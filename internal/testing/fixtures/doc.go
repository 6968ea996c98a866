// Package fixtures builds upstream-shaped test data and a fake upstream
// server that serves it over HTTP.
package fixtures
