package server

import (
	"context"
	"testing"
)

// testContext is a Go 1.21 stand-in for testing.T.Context (Go 1.24+).
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
