// Package acquire obtains raw document bytes from a URL or an upload,
// enforcing the size limit while streaming rather than after buffering.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrorKind classifies acquisition failures.
type ErrorKind string

const (
	KindNetwork           ErrorKind = "network_error"
	KindSizeExceeded      ErrorKind = "size_exceeded"
	KindUnsupportedScheme ErrorKind = "unsupported_scheme"
	KindTimeout           ErrorKind = "timeout"
)

// Error is an acquisition failure with a machine-readable kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("acquire: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result holds the acquired document bytes and resolved identity.
type Result struct {
	Data     []byte
	Filename string
	MIME     string
}

// Acquirer fetches documents by URL or accepts uploaded bytes.
type Acquirer struct {
	client   *http.Client
	maxBytes int64
	timeout  time.Duration
}

func New(maxBytes int64, timeout time.Duration) *Acquirer {
	return &Acquirer{
		client:   &http.Client{},
		maxBytes: maxBytes,
		timeout:  timeout,
	}
}

// FetchURL downloads a document with a bounded deadline. The body is read
// through a limited counter so an oversized payload aborts at the limit
// instead of being buffered whole.
func (a *Acquirer) FetchURL(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("parse url: %w", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &Error{Kind: KindUnsupportedScheme, Err: fmt.Errorf("scheme %q not allowed", u.Scheme)}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: classifyFetchErr(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("status %d fetching %s", resp.StatusCode, u.Host)}
	}
	if resp.ContentLength > a.maxBytes {
		return nil, &Error{Kind: KindSizeExceeded, Err: fmt.Errorf("declared %d bytes exceeds limit %d", resp.ContentLength, a.maxBytes)}
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return nil, &Error{Kind: classifyFetchErr(err), Err: fmt.Errorf("read body: %w", err)}
	}
	if n > a.maxBytes {
		return nil, &Error{Kind: KindSizeExceeded, Err: fmt.Errorf("body exceeds limit %d", a.maxBytes)}
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: DocumentNameFromURL(u),
		MIME:     resolveMIME(resp.Header.Get("Content-Type"), DocumentNameFromURL(u)),
	}, nil
}

// FromUpload validates and reads an uploaded file. The declared size is
// checked before the body is read; the read itself is still limit-bounded.
func (a *Acquirer) FromUpload(filename string, declaredSize int64, declaredMIME string, r io.Reader) (*Result, error) {
	if declaredSize > a.maxBytes {
		return nil, &Error{Kind: KindSizeExceeded, Err: fmt.Errorf("declared %d bytes exceeds limit %d", declaredSize, a.maxBytes)}
	}

	data, err := io.ReadAll(io.LimitReader(r, a.maxBytes+1))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("read upload: %w", err)}
	}
	if int64(len(data)) > a.maxBytes {
		return nil, &Error{Kind: KindSizeExceeded, Err: fmt.Errorf("upload exceeds limit %d", a.maxBytes)}
	}

	name := SanitizeFilename(filename)
	return &Result{
		Data:     data,
		Filename: name,
		MIME:     resolveMIME(declaredMIME, name),
	}, nil
}

func classifyFetchErr(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// resolveMIME prefers the declared content type, falling back to the
// filename extension.
func resolveMIME(declared, filename string) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "" && mt != "application/octet-stream" {
			return mt
		}
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			if parsed, _, err := mime.ParseMediaType(mt); err == nil {
				return parsed
			}
		}
	}
	return "application/octet-stream"
}

// DocumentNameFromURL derives a display name from the URL path, query
// string excluded.
func DocumentNameFromURL(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		return u.Host
	}
	return name
}

// SanitizeFilename strips path components from a client-supplied filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
