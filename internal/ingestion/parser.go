// Package ingestion turns demo text files into documents and chunks.
package ingestion

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"docrag/internal/model"
)

// Header keys are accepted in English and Italian.
var headerKeys = map[string]string{
	"title":          "title",
	"titolo":         "title",
	"source":         "source_url",
	"fonte":          "source_url",
	"license":        "license",
	"licenza":        "license",
	"accessed":       "accessed_at",
	"accesso":        "accessed_at",
	"classification": "classification",
}

// ParseFile reads a "key: value" header block, a blank line and a body.
// Unknown header keys are ignored. The title falls back to the file stem, the
// label to model.DefaultLabel, and a source that is not http(s) is dropped.
func ParseFile(name string, raw []byte) (model.Document, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	header, body, found := strings.Cut(text, "\n\n")
	if !found {
		header, body = "", text
	}
	meta := parseHeader(header)

	body = strings.TrimSpace(body)
	if body == "" {
		return model.Document{}, fmt.Errorf("%w: empty document body: %s", model.ErrInvalidArgument, name)
	}

	doc := model.Document{
		Title:               meta["title"],
		Text:                body,
		ClassificationLabel: model.DefaultLabel,
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if u, ok := meta["source_url"]; ok && isHTTPURL(u) {
		doc.SourceURL = &u
	}
	if l, ok := meta["license"]; ok {
		doc.License = &l
	}
	if d, ok := meta["accessed_at"]; ok {
		if t, err := time.Parse(time.DateOnly, d); err == nil {
			doc.AccessedAt = &t
		}
	}
	if c, ok := meta["classification"]; ok {
		label, err := model.ParseLabel(strings.ToLower(c))
		if err != nil {
			return model.Document{}, fmt.Errorf("%s: %w", name, err)
		}
		doc.ClassificationLabel = label
	}
	return doc, nil
}

func parseHeader(header string) map[string]string {
	meta := make(map[string]string)
	for _, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if mapped, known := headerKeys[strings.ToLower(strings.TrimSpace(key))]; known {
			meta[mapped] = value
		}
	}
	return meta
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// LoadDir parses every *.txt file at the root of fsys in name order.
func LoadDir(fsys fs.FS) ([]model.Document, error) {
	names, err := fs.Glob(fsys, "*.txt")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	docs := make([]model.Document, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		doc, err := ParseFile(name, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
