package queryfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
		wantErr  bool
	}{
		{
			name:     "plain lines",
			content:  "first\nsecond\nthird\n",
			expected: []string{"first", "second", "third"},
		},
		{
			name:     "blank and whitespace lines dropped",
			content:  "first\n\n   \n\tsecond\t\n",
			expected: []string{"first", "second"},
		},
		{
			name:     "no trailing newline",
			content:  "only",
			expected: []string{"only"},
		},
		{
			name:    "empty file",
			content: "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			content: "  \n\t\n   \n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.content)
			queries, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(queries, tt.expected) {
				t.Errorf("Load() = %v, want %v", queries, tt.expected)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
