package server

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/tetratelabs/wazero"

	"github.com/marmos91/oakd/pkg/lookup"
	"github.com/marmos91/oakd/pkg/policy"
	"github.com/marmos91/oakd/pkg/wasmhost"
)

func newEchoHandler(t *testing.T, p policy.Policy) *Handler {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	compiled, err := wasmhost.Load(ctx, rt, echoModuleBytes())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { _ = compiled.Close(ctx) })

	manager := lookup.NewManager(nil, nil)
	shaper := policy.NewShaper(p, nil)
	return NewHandler(compiled, manager, shaper)
}

func TestHandlePadsEchoedResponseToConstantSize(t *testing.T) {
	h := newEchoHandler(t, policy.Policy{
		ConstantResponseSizeBytes: 64,
		ConstantProcessingTime:    5 * time.Millisecond,
	})

	resp := h.Handle(context.Background(), []byte("hello"))

	if resp.Status != policy.StatusSuccess {
		t.Fatalf("got status %v, want StatusSuccess", resp.Status)
	}
	if len(resp.Body) != 64 {
		t.Fatalf("got body length %d, want 64", len(resp.Body))
	}
	if resp.Length != 5 {
		t.Fatalf("got Length %d, want 5", resp.Length)
	}
	if !bytes.Equal(resp.Body[:5], []byte("hello")) {
		t.Fatalf("got body prefix %q, want %q", resp.Body[:5], "hello")
	}
}

func TestHandleWaitsOutConstantProcessingTime(t *testing.T) {
	h := newEchoHandler(t, policy.Policy{
		ConstantResponseSizeBytes: 64,
		ConstantProcessingTime:    50 * time.Millisecond,
	})

	start := time.Now()
	h.Handle(context.Background(), []byte("x"))
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Fatalf("Handle returned after %s, want >= 50ms", elapsed)
	}
}
