package generator

import (
	"context"
	"errors"
	"testing"
)

func TestCLIClientHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCLIClient("claude")
	_, err := c.Generate(ctx, "system", "user")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled before invoking the binary, got %v", err)
	}
}
