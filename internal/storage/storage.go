package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Store keeps uploaded objects under logical keys such as "company/logo".
// Putting an existing key replaces the object.
type Store interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	// URL returns the public address of key.
	URL(key string) string
}

// Keys of the objects the application stores.
func CompanyLogoKey() string { return "company/logo" }

func EmployeeCertificateKey(employeeID uint) string {
	return fmt.Sprintf("employees/%d/certificate", employeeID)
}

func cleanKey(key string) (string, error) {
	key = strings.Trim(key, "/")
	if key == "" {
		return "", fmt.Errorf("storage: empty key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return key, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
