package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadKeyValueCSV reads a two-column "key, value" file such as
// examples/inputs/ideal_inputs.csv. Blank lines and lines starting with # are
// skipped; a repeated key is an error.
func LoadKeyValueCSV(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs file: %w", err)
	}
	defer f.Close()
	return ReadKeyValueCSV(f)
}

func ReadKeyValueCSV(in io.Reader) (map[string]string, error) {
	r := csv.NewReader(in)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	out := map[string]string{}
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("inputs line %d: want key,value, got %d fields", line, len(rec))
		}
		key := strings.TrimSpace(rec[0])
		if key == "" {
			return nil, fmt.Errorf("inputs line %d: empty key", line)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("inputs line %d: duplicate key %q", line, key)
		}
		out[key] = strings.TrimSpace(rec[1])
	}
	return out, nil
}
