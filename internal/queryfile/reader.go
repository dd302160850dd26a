// Package queryfile loads the input query list.
package queryfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a UTF-8 text file with one query per line, dropping blank
// and whitespace-only lines. A missing file or a file with no usable
// queries is an error; both abort the run before any processing starts.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open query file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var queries []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read query file %s: %w", path, err)
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("query file %s contains no queries", path)
	}

	return queries, nil
}
