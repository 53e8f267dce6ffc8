package policy

import (
	"context"
	"errors"
	"testing"
	"time"
)

func echoPolicy() Policy {
	return Policy{ConstantResponseSizeBytes: 50, ConstantProcessingTime: 100 * time.Millisecond}
}

func TestRunEchoCompletesWithinBudget(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	resp := shaper.Run(context.Background(), func(ctx context.Context) (Response, error) {
		body := []byte("hi")
		return Response{Status: StatusSuccess, Body: body, Length: uint64(len(body))}, nil
	})

	if resp.Status != StatusSuccess {
		t.Fatalf("got status %v, want Success", resp.Status)
	}
	if len(resp.Body) != 50 {
		t.Fatalf("got body length %d, want 50", len(resp.Body))
	}
	if resp.Length != 2 {
		t.Fatalf("got pre-padding length %d, want 2", resp.Length)
	}
	if string(resp.Body[:2]) != "hi" {
		t.Fatalf("got body prefix %q, want hi", resp.Body[:2])
	}
	for _, b := range resp.Body[2:] {
		if b != 0 {
			t.Fatalf("expected zero padding after the 2 meaningful bytes, got %v", resp.Body[2:])
		}
	}
}

func TestRunTimesOutWhenGuestIsSlow(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	start := time.Now()
	resp := shaper.Run(context.Background(), func(ctx context.Context) (Response, error) {
		time.Sleep(1000 * time.Millisecond)
		return Response{Status: StatusSuccess, Body: []byte("too slow")}, nil
	})
	elapsed := time.Since(start)

	if resp.Status != StatusPolicyTimeViolation {
		t.Fatalf("got status %v, want PolicyTimeViolation", resp.Status)
	}
	if elapsed < 100*time.Millisecond {
		t.Fatalf("returned before the policy's timer fired: %v", elapsed)
	}
	if elapsed >= 1000*time.Millisecond {
		t.Fatalf("must not wait for the slow guest to finish: waited %v", elapsed)
	}
	if len(resp.Body) != 50 {
		t.Fatalf("got body length %d, want 50", len(resp.Body))
	}
}

func TestRunReplacesOversizeBody(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	resp := shaper.Run(context.Background(), func(ctx context.Context) (Response, error) {
		return Response{Status: StatusSuccess, Body: make([]byte, 200)}, nil
	})

	if resp.Status != StatusPolicySizeViolation {
		t.Fatalf("got status %v, want PolicySizeViolation", resp.Status)
	}
	if len(resp.Body) != 50 {
		t.Fatalf("got body length %d, want 50", len(resp.Body))
	}
	if resp.Length != uint64(len(reasonTooLarge)) {
		t.Fatalf("got length %d, want %d", resp.Length, len(reasonTooLarge))
	}
}

func TestRunBodyExactlyNIsNotFlagged(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	resp := shaper.Run(context.Background(), func(ctx context.Context) (Response, error) {
		return Response{Status: StatusSuccess, Body: make([]byte, 50)}, nil
	})

	if resp.Status != StatusSuccess {
		t.Fatalf("got status %v, want Success for a body exactly N bytes long", resp.Status)
	}
	if len(resp.Body) != 50 {
		t.Fatalf("got body length %d, want 50", len(resp.Body))
	}
}

func TestRunBodyOneByteOverNIsFlagged(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	resp := shaper.Run(context.Background(), func(ctx context.Context) (Response, error) {
		return Response{Status: StatusSuccess, Body: make([]byte, 51)}, nil
	})

	if resp.Status != StatusPolicySizeViolation {
		t.Fatalf("got status %v, want PolicySizeViolation for a body one byte over N", resp.Status)
	}
}

func TestRunFrameworkErrorBecomesInternalServerError(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	resp := shaper.Run(context.Background(), func(ctx context.Context) (Response, error) {
		return Response{}, errors.New("guest trapped")
	})

	if resp.Status != StatusInternalServerError {
		t.Fatalf("got status %v, want InternalServerError", resp.Status)
	}
	if len(resp.Body) != 50 {
		t.Fatalf("got body length %d, want 50", len(resp.Body))
	}
}

func TestEnforceSizeIsIdempotent(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	once := shaper.enforceSize(Response{Status: StatusSuccess, Body: []byte("hi"), Length: 2})
	twice := shaper.enforceSize(once)

	if twice.Length != once.Length {
		t.Fatalf("re-shaping changed Length: got %d, want %d", twice.Length, once.Length)
	}
	if string(twice.Body) != string(once.Body) {
		t.Fatalf("re-shaping changed Body: got %v, want %v", twice.Body, once.Body)
	}
	if twice.Status != once.Status {
		t.Fatalf("re-shaping changed Status: got %v, want %v", twice.Status, once.Status)
	}
}

func TestRunReshapingAlreadyShapedResponseIsNoop(t *testing.T) {
	shaper := NewShaper(echoPolicy(), nil)

	shaped := shaper.Run(context.Background(), func(ctx context.Context) (Response, error) {
		body := []byte("hi")
		return Response{Status: StatusSuccess, Body: body, Length: uint64(len(body))}, nil
	})

	reshaped := shaper.enforceSize(shaped)

	if reshaped.Length != 2 {
		t.Fatalf("re-shaping an already-shaped response must not change Length: got %d, want 2", reshaped.Length)
	}
	if string(reshaped.Body) != string(shaped.Body) {
		t.Fatalf("re-shaping an already-shaped response must not change Body")
	}
}

func TestPolicyValidateRejectsBelowMinimums(t *testing.T) {
	if err := (Policy{ConstantResponseSizeBytes: 49, ConstantProcessingTime: time.Millisecond}).Validate(); err == nil {
		t.Fatal("expected error for response size below 50")
	}
	if err := (Policy{ConstantResponseSizeBytes: 50, ConstantProcessingTime: 0}).Validate(); err == nil {
		t.Fatal("expected error for processing time below 1ms")
	}
	if err := echoPolicy().Validate(); err != nil {
		t.Fatalf("expected valid policy to pass, got %v", err)
	}
}
