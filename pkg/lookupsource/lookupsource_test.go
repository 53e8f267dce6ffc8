package lookupsource

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/oakd/pkg/config"
	"github.com/marmos91/oakd/pkg/lookup"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := map[string][]byte{
		"key1": []byte("value1"),
		"key2": []byte(""),
		"":     []byte("empty key"),
	}

	decoded, err := Decode(bytes.NewReader(Encode(original)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("got %d entries, want %d", len(decoded), len(original))
	}
	for k, v := range original {
		got, ok := decoded[k]
		if !ok {
			t.Fatalf("missing key %q after round trip", k)
		}
		if !bytes.Equal(got, v) {
			t.Fatalf("key %q: got %q, want %q", k, got, v)
		}
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0x05, 0x00, 0x00, 0x00, 'a', 'b'}))
	if err == nil {
		t.Fatal("expected error decoding a truncated frame")
	}
}

func TestFetchFromFilesystemPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lookup.bin")
	data := map[string][]byte{"k": []byte("v")}
	if err := os.WriteFile(path, Encode(data), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := Fetch(context.Background(), path, noopTokenSource{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got["k"]) != "v" {
		t.Fatalf("got %v, want k=v", got)
	}
}

func TestFetchFromHTTPServer(t *testing.T) {
	data := map[string][]byte{"remote-key": []byte("remote-value")}
	var gotAuthHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthHeader = r.Header.Get("Authorization")
		w.Write(Encode(data))
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), srv.URL, staticTokenSource{token: "secret-token"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got["remote-key"]) != "remote-value" {
		t.Fatalf("got %v, want remote-key=remote-value", got)
	}
	if gotAuthHeader != "Bearer secret-token" {
		t.Fatalf("got Authorization header %q, want Bearer secret-token", gotAuthHeader)
	}
}

func TestFetchHTTPPropagatesPermanentErrorWithoutRetrying(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, noopTokenSource{})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call for a permanent 404, got %d", calls)
	}
}

func TestNewTokenSourceSelectsStrategy(t *testing.T) {
	if _, ok := NewTokenSource(config.LookupDataAuthConfig{}).(noopTokenSource); !ok {
		t.Fatal("expected noopTokenSource for empty strategy")
	}
	if ts, ok := NewTokenSource(config.LookupDataAuthConfig{Strategy: "static", Token: "abc"}).(staticTokenSource); !ok || ts.token != "abc" {
		t.Fatal("expected staticTokenSource carrying the configured token")
	}
}

func TestRefresherOnceInstallsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lookup.bin")
	if err := os.WriteFile(path, Encode(map[string][]byte{"a": []byte("1")}), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	manager := lookup.NewManager(nil, nil)
	refresher := NewRefresher(path, noopTokenSource{}, manager, 0)

	if err := refresher.Once(context.Background()); err != nil {
		t.Fatalf("Once: %v", err)
	}

	v, ok := manager.CreateLookupData().Get([]byte("a"))
	if !ok || string(v) != "1" {
		t.Fatalf("got %q present=%v, want 1", v, ok)
	}
}
