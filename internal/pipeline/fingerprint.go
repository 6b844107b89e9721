package pipeline

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
)

// FingerprintBytes derives the cache key for uploaded content from its
// bytes: identical bytes always map to the same fingerprint.
func FingerprintBytes(data []byte) string {
	h := sha256.New()
	h.Write([]byte("bytes\n"))
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// FingerprintURL derives the cache key for a URL source from the
// canonicalized URL, so the cache check can run before any download.
func FingerprintURL(rawURL string) (string, error) {
	canonical, err := CanonicalURL(rawURL)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte("url\n"))
	h.Write([]byte(canonical))
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// CanonicalURL normalizes trivially-equivalent URL spellings: scheme and
// host lowercased, default port and fragment dropped. Path and query are
// preserved as given since they can address different documents.
func CanonicalURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Hostname()
	}

	return u.String(), nil
}
