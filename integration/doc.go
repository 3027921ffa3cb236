//go:build integration

// Package integration provides integration tests for the roarchive library.
//
// These tests require Docker and serve fixture trees from a real nginx
// server using testcontainers.
// Run with: go test -tags=integration ./integration/...
package integration
