package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"webdeck/internal/shared"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *HTTPProjectSource {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewHTTPProjectSource(SourceOpts{
		BaseURL:      srv.URL,
		BypassHeader: "Bypass-Tunnel-Reminder",
		BypassValue:  "true",
		ExtraHeaders: map[string]string{"X-Extra": "yes"},
		RateLimit:    100,
	})
}

func TestHTTPProjectSource_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotBypass, gotExtra string
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			gotBypass = r.Header.Get("Bypass-Tunnel-Reminder")
			gotExtra = r.Header.Get("X-Extra")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"demo","files":["demo.zip","extra.zip"]}]`))
		})

		listings, err := source.List(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(listings) != 1 {
			t.Fatalf("expected 1 listing, got %d", len(listings))
		}
		if listings[0].ID != "demo" || len(listings[0].Files) != 2 {
			t.Errorf("unexpected listing: %+v", listings[0])
		}
		if gotBypass != "true" {
			t.Error("bypass header not sent")
		}
		if gotExtra != "yes" {
			t.Error("extra header not sent")
		}
	})

	t.Run("Proxy Interstitial", func(t *testing.T) {
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html>tunnel reminder</html>"))
		})

		_, err := source.List(context.Background())
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork for interstitial, got %v", err)
		}
	})

	t.Run("Non-Success Status", func(t *testing.T) {
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		})

		_, err := source.List(context.Background())
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork for 502, got %v", err)
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		source := NewHTTPProjectSource(SourceOpts{BaseURL: "http://127.0.0.1:1", RateLimit: 100})

		_, err := source.List(context.Background())
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork for unreachable host, got %v", err)
		}
	})
}

func TestHTTPProjectSource_Download(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath string
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/zip")
			w.Write([]byte("PK\x03\x04fakezipbytes"))
		})

		data, err := source.Download(context.Background(), "demo", "demo.zip")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotPath != "/api/projects/demo/files/demo.zip" {
			t.Errorf("unexpected path: %s", gotPath)
		}
		if len(data) == 0 {
			t.Error("expected archive bytes")
		}
	})

	t.Run("Missing Arguments", func(t *testing.T) {
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {})

		if _, err := source.Download(context.Background(), "", "demo.zip"); err == nil {
			t.Error("expected error for empty project id")
		}
		if _, err := source.Download(context.Background(), "demo", ""); err == nil {
			t.Error("expected error for empty file name")
		}
	})

	t.Run("Proxy Interstitial", func(t *testing.T) {
		source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>reminder</html>"))
		})

		_, err := source.Download(context.Background(), "demo", "demo.zip")
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork for interstitial, got %v", err)
		}
	})
}

func TestHTTPProjectSource_Defaults(t *testing.T) {
	source := NewHTTPProjectSource(SourceOpts{})

	if source.baseURL != defaultBaseURL {
		t.Errorf("expected default base URL, got %s", source.baseURL)
	}
	if source.bypassHeader != "Bypass-Tunnel-Reminder" || source.bypassValue != "true" {
		t.Error("expected default bypass header")
	}
	if source.Name() != "Project API" {
		t.Errorf("unexpected source name: %s", source.Name())
	}
}
