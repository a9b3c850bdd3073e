package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"meme-journalist/internal/model"
)

// DayLayout names one record per calendar day.
const DayLayout = "20060102"

// Store writes digests as indented JSON arrays, one file per calendar day.
type Store struct {
	dir    string
	prefix string
}

// NewStore creates a file store rooted at dir. Files are named
// <prefix>YYYYMMDD.json.
func NewStore(dir, prefix string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir, prefix: prefix}
}

// Path returns the record file for the calendar day of t (in t's location).
func (s *Store) Path(t time.Time) string {
	return filepath.Join(s.dir, s.prefix+t.Format(DayLayout)+".json")
}

// Save writes the digest for the day of t, replacing any earlier record of that day.
func (s *Store) Save(t time.Time, d model.Digest) (string, error) {
	b, err := Encode(d)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create record dir: %w", err)
	}
	path := s.Path(t)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write record: %w", err)
	}
	return path, nil
}

// Load reads the record for the day of t.
func (s *Store) Load(t time.Time) (model.Digest, error) {
	return LoadFile(s.Path(t))
}

// LoadFile reads a record file.
func LoadFile(path string) (model.Digest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Encode serializes a digest in rank order. Timestamps use RFC 3339.
func Encode(d model.Digest) ([]byte, error) {
	if d == nil {
		d = model.Digest{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode digest: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a serialized digest.
func Decode(b []byte) (model.Digest, error) {
	var d model.Digest
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	return d, nil
}

// ParseDay parses a YYYYMMDD day name in the local time zone.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.Local)
}
