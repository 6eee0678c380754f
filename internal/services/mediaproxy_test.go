package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProxyResolverResolve(t *testing.T) {
	t.Run("parses the resolved url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/files/photo-1/url" {
				t.Errorf("Unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(resolveResponse{FileID: "photo-1", URL: "https://cdn.test/photo-1.jpg"})
		}))
		defer server.Close()

		resolver := NewProxyResolver(server.URL, nil)
		url, err := resolver.Resolve(context.Background(), "photo-1")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if url != "https://cdn.test/photo-1.jpg" {
			t.Errorf("Unexpected url: %s", url)
		}
	})

	t.Run("escapes the file id", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			json.NewEncoder(w).Encode(resolveResponse{URL: "https://cdn.test/x"})
		}))
		defer server.Close()

		resolver := NewProxyResolver(server.URL, nil)
		if _, err := resolver.Resolve(context.Background(), "a/b"); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if gotPath != "/files/a%2Fb/url" {
			t.Errorf("Expected escaped path, got %s", gotPath)
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		resolver := NewProxyResolver(server.URL, nil)
		if _, err := resolver.Resolve(context.Background(), "missing"); err == nil {
			t.Error("Expected error for 404")
		}
	})

	t.Run("empty url in response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(resolveResponse{FileID: "x"})
		}))
		defer server.Close()

		resolver := NewProxyResolver(server.URL, nil)
		if _, err := resolver.Resolve(context.Background(), "x"); err == nil {
			t.Error("Expected error for empty url")
		}
	})
}

func TestProxyResolverPurge(t *testing.T) {
	t.Run("posts all file ids", func(t *testing.T) {
		var got purgeRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/files/purge" || r.Method != http.MethodPost {
				t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("Failed to decode purge body: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		resolver := NewProxyResolver(server.URL, nil)
		if err := resolver.Purge(context.Background(), []string{"a", "b"}); err != nil {
			t.Fatalf("Purge failed: %v", err)
		}
		if len(got.FileIDs) != 2 {
			t.Errorf("Expected 2 file ids, got %v", got.FileIDs)
		}
	})

	t.Run("empty purge is a no-op", func(t *testing.T) {
		resolver := NewProxyResolver("http://unreachable.invalid", nil)
		if err := resolver.Purge(context.Background(), nil); err != nil {
			t.Errorf("Expected nil for empty purge, got %v", err)
		}
	})

	t.Run("error status propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		resolver := NewProxyResolver(server.URL, nil)
		if err := resolver.Purge(context.Background(), []string{"a"}); err == nil {
			t.Error("Expected error for 500")
		}
	})
}

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(nil)

	if notifier.Name() != "log" {
		t.Errorf("Expected name log, got %s", notifier.Name())
	}

	event := TaskEvent{Type: EventTaskCreated, TaskID: "t1"}
	if err := notifier.Publish(context.Background(), event); err != nil {
		t.Errorf("Expected log publish to never fail, got %v", err)
	}
}
