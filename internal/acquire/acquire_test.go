package acquire

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestFetchURL_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("hello document"))
	}))
	defer srv.Close()

	a := New(1024, 5*time.Second)
	res, err := a.FetchURL(t.Context(), srv.URL+"/docs/readme.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Data) != "hello document" {
		t.Errorf("unexpected body %q", res.Data)
	}
	if res.Filename != "readme.txt" {
		t.Errorf("expected filename readme.txt, got %q", res.Filename)
	}
	if res.MIME != "text/plain" {
		t.Errorf("expected mime text/plain, got %q", res.MIME)
	}
}

func TestFetchURL_SizeExceededWithoutBuffering(t *testing.T) {
	const limit = 1024
	// Stream far more than the limit; the acquirer must stop reading at
	// limit+1 bytes rather than draining the response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := strings.Repeat("x", 4096)
		for i := 0; i < 1024; i++ {
			if _, err := w.Write([]byte(chunk)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	a := New(limit, 5*time.Second)
	_, err := a.FetchURL(t.Context(), srv.URL+"/big.txt")

	var acqErr *Error
	if !errors.As(err, &acqErr) || acqErr.Kind != KindSizeExceeded {
		t.Fatalf("expected SizeExceeded, got %v", err)
	}
}

func TestFetchURL_DeclaredSizeExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "99999")
		w.Write([]byte(strings.Repeat("x", 99999)))
	}))
	defer srv.Close()

	a := New(1024, 5*time.Second)
	_, err := a.FetchURL(t.Context(), srv.URL+"/big.txt")

	var acqErr *Error
	if !errors.As(err, &acqErr) || acqErr.Kind != KindSizeExceeded {
		t.Fatalf("expected SizeExceeded, got %v", err)
	}
}

func TestFetchURL_UnsupportedScheme(t *testing.T) {
	a := New(1024, time.Second)
	for _, u := range []string{"ftp://example.com/doc.pdf", "file:///etc/passwd"} {
		_, err := a.FetchURL(t.Context(), u)
		var acqErr *Error
		if !errors.As(err, &acqErr) || acqErr.Kind != KindUnsupportedScheme {
			t.Errorf("%s: expected UnsupportedScheme, got %v", u, err)
		}
	}
}

func TestFetchURL_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	a := New(1024, 50*time.Millisecond)
	_, err := a.FetchURL(t.Context(), srv.URL+"/slow.txt")

	var acqErr *Error
	if !errors.As(err, &acqErr) || acqErr.Kind != KindTimeout {
		t.Fatalf("expected Timeout, got %v", err)
	}
}

func TestFetchURL_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	a := New(1024, time.Second)
	_, err := a.FetchURL(t.Context(), srv.URL+"/missing.txt")

	var acqErr *Error
	if !errors.As(err, &acqErr) || acqErr.Kind != KindNetwork {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestFromUpload_DeclaredSizeRejectedBeforeRead(t *testing.T) {
	a := New(1024, time.Second)
	_, err := a.FromUpload("big.txt", 2048, "text/plain", strings.NewReader("irrelevant"))

	var acqErr *Error
	if !errors.As(err, &acqErr) || acqErr.Kind != KindSizeExceeded {
		t.Fatalf("expected SizeExceeded, got %v", err)
	}
}

func TestFromUpload_ActualSizeEnforced(t *testing.T) {
	a := New(10, time.Second)
	// Declared size lies; the limited read still catches it.
	_, err := a.FromUpload("sneaky.txt", 5, "text/plain", strings.NewReader(strings.Repeat("x", 100)))

	var acqErr *Error
	if !errors.As(err, &acqErr) || acqErr.Kind != KindSizeExceeded {
		t.Fatalf("expected SizeExceeded, got %v", err)
	}
}

func TestFromUpload_Success(t *testing.T) {
	a := New(1024, time.Second)
	res, err := a.FromUpload("../evil/../notes.txt", 11, "", strings.NewReader("sky is blue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "notes.txt" {
		t.Errorf("expected sanitized filename notes.txt, got %q", res.Filename)
	}
	if res.MIME != "text/plain" {
		t.Errorf("expected mime from extension, got %q", res.MIME)
	}
}

func TestDocumentNameFromURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://example.com/files/policy.pdf?sig=abc123", "policy.pdf"},
		{"https://example.com/files/policy.pdf", "policy.pdf"},
		{"https://example.com/", "example.com"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.raw, err)
		}
		if got := DocumentNameFromURL(u); got != tt.want {
			t.Errorf("DocumentNameFromURL(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
