package profiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/docparse/internal/fingerprint"
)

const topFontsKey = "top_fonts"

// WriteJSON writes the store as
//
//	{"<template_id>": {"<slot>": <number>, ..., "top_fonts": [...]}, ...}
//
// keeping store order for templates and schema order for slots.
func (s *Store) WriteJSON(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.IDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		p := s.byID[id]
		if len(p.Values) != s.schema.Len() {
			return fmt.Errorf("profile %q has %d values, schema has %d", id, len(p.Values), s.schema.Len())
		}
		if err := writeKey(&buf, id); err != nil {
			return err
		}
		buf.WriteByte('{')
		for j, slot := range s.schema.Slots {
			if err := writeKey(&buf, slot); err != nil {
				return err
			}
			v, err := json.Marshal(p.Values[j])
			if err != nil {
				return fmt.Errorf("profile %q slot %s: %w", id, slot, err)
			}
			buf.Write(v)
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, topFontsKey); err != nil {
			return err
		}
		fonts := p.TopFonts
		if fonts == nil {
			fonts = []string{}
		}
		fv, err := json.Marshal(fonts)
		if err != nil {
			return err
		}
		buf.Write(fv)
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}

func writeKey(buf *bytes.Buffer, k string) error {
	b, err := json.Marshal(k)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

// ReadJSON parses a profile artifact against schema. Template order follows
// the document; slots absent from an entry load as 0 and unknown keys are
// ignored.
func ReadJSON(r io.Reader, schema fingerprint.Schema) (*Store, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("read profiles: expected object")
	}

	store := NewStore(schema)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read profiles: %w", err)
		}
		id, ok := tok.(string)
		if !ok {
			return nil, errors.New("read profiles: expected template id")
		}
		var entry map[string]json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("read profile %q: %w", id, err)
		}
		p, err := decodeEntry(id, entry, schema)
		if err != nil {
			return nil, err
		}
		store.put(p)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return store, nil
}

func decodeEntry(id string, entry map[string]json.RawMessage, schema fingerprint.Schema) (Profile, error) {
	p := Profile{TemplateID: id, Values: make([]float64, schema.Len()), TopFonts: []string{}}
	for i, slot := range schema.Slots {
		raw, ok := entry[slot]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, &p.Values[i]); err != nil {
			return Profile{}, fmt.Errorf("profile %q slot %s: %w", id, slot, err)
		}
	}
	if raw, ok := entry[topFontsKey]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &p.TopFonts); err != nil {
			return Profile{}, fmt.Errorf("profile %q top_fonts: %w", id, err)
		}
	}
	return p, nil
}

// LoadFile reads a profile artifact from disk.
func LoadFile(path string, schema fingerprint.Schema) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f, schema)
}

// SaveFile writes the store to path, creating parent directories.
func (s *Store) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.WriteJSON(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
