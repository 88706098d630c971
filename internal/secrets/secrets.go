package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source is one secret as it appears in configuration.
type Source struct {
	Name  string // used in error messages, e.g. "serpapi.api_key"
	Value string // inline value, already env-expanded
	File  string // path to a file holding the value; wins over Value
}

// Resolve returns the trimmed secret, reading File when set. A missing value
// yields an empty string and no error.
func Resolve(src Source) (string, error) {
	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s from %q: %w", name(src), file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name(src), file)
		}
		return secret, nil
	}
	return strings.TrimSpace(src.Value), nil
}

// Require is Resolve but fails when no value is configured.
func Require(src Source) (string, error) {
	secret, err := Resolve(src)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("%s is required", name(src))
	}
	return secret, nil
}

func name(src Source) string {
	if n := strings.TrimSpace(src.Name); n != "" {
		return n
	}
	return "secret"
}
