package audit

import "strings"

// Redacted replaces the value of every sensitive key.
const Redacted = "[redacted]"

var sensitiveKeys = map[string]struct{}{
	"question":     {},
	"prompt":       {},
	"content":      {},
	"text":         {},
	"body":         {},
	"source_title": {},
	"source_url":   {},
	"excerpt":      {},
	"password":     {},
	"token":        {},
	"access_token": {},
}

// IsSensitive reports whether values under key must never be persisted.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// Sanitize returns a copy of payload in which the value of every sensitive key,
// at any depth of nested maps and slices, is replaced by Redacted. The key is
// kept so readers can see that the field existed. The input is not modified and
// Sanitize(Sanitize(p)) equals Sanitize(p).
func Sanitize(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return sanitizeMap(payload)
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if IsSensitive(k) {
			out[k] = Redacted
			continue
		}
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return sanitizeMap(t)
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			if IsSensitive(k) {
				out[k] = Redacted
			} else {
				out[k] = s
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = sanitizeValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = sanitizeMap(e)
		}
		return out
	default:
		return v
	}
}
