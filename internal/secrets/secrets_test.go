package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr bool
	}{
		{name: "inline", src: Source{Value: "  abc \n"}, want: "abc"},
		{name: "empty", src: Source{}, want: ""},
		{name: "file wins", src: Source{Value: "inline", File: writeFile(t, "from-file\n")}, want: "from-file"},
		{name: "empty file", src: Source{Name: "serpapi.api_key", File: writeFile(t, " \n")}, wantErr: true},
		{name: "missing file", src: Source{File: filepath.Join(t.TempDir(), "nope")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	_, err := Require(Source{Name: "embedding.api_key"})
	if err == nil || !strings.Contains(err.Error(), "embedding.api_key is required") {
		t.Fatalf("Require(empty) err = %v", err)
	}

	got, err := Require(Source{Value: "k"})
	if err != nil || got != "k" {
		t.Errorf("Require = %q, %v", got, err)
	}
}
