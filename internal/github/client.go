package github

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v60/github"
)

// NewClient creates an unauthenticated GitHub API client. All reads in this
// tool are against public data, so anonymous access works out of the box at
// the lower quota ceiling (60 requests/hour).
func NewClient(timeout time.Duration) *gogithub.Client {
	return gogithub.NewClient(&http.Client{Timeout: timeout})
}

// NewAppClient creates a GitHub API client authenticated as a GitHub App
// installation, raising the quota ceiling for heavy scan sessions. It uses
// ghinstallation for automatic JWT and installation token management.
//
// privateKey can be either:
//   - Raw PEM bytes (begins with "-----BEGIN")
//   - Base64-encoded PEM bytes
//
// If privateKey is nil or empty and privateKeyPath is provided, the key is
// read from that file path.
func NewAppClient(appID, installationID int64, privateKey []byte, privateKeyPath string, timeout time.Duration) (*gogithub.Client, error) {
	key, err := resolvePrivateKey(privateKey, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("resolving private key: %w", err)
	}

	transport, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}

	client := gogithub.NewClient(&http.Client{Transport: transport, Timeout: timeout})
	return client, nil
}

// resolvePrivateKey returns PEM-encoded private key bytes from either the
// provided raw/base64-encoded key or by reading from a file path.
func resolvePrivateKey(key []byte, keyPath string) ([]byte, error) {
	if len(key) > 0 {
		s := strings.TrimSpace(string(key))
		if strings.HasPrefix(s, "-----BEGIN") {
			return []byte(s), nil
		}
		// Try base64 decode
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			// Try URL-safe base64
			decoded, err = base64.URLEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("private key is neither PEM nor valid base64: %w", err)
			}
		}
		return decoded, nil
	}

	if keyPath != "" {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("reading private key file %s: %w", keyPath, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("no private key provided: set private_key or private_key_path")
}
