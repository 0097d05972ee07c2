package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput is returned when no candidate slice of the model output
// parses as a JSON object.
var ErrMalformedOutput = errors.New("malformed generation output")

const (
	fence     = "```"
	jsonFence = "```json"
)

// Captions is the normalized model output.
type Captions struct {
	InstagramVersion string `json:"instagram_version"`
	TwitterVersion   string `json:"twitter_version"`
}

// ParseCaptions extracts the two caption fields from raw model output.
//
// Candidates are tried in order and the first that parses as a JSON object
// wins:
//  1. the body of a ```json fence (marker matched case-insensitively)
//  2. the body of a generic ``` fence
//  3. the whole trimmed text
//  4. the outermost {...} substring
//
// A fence with no closing marker yields everything after the opening one.
// Missing fields become "". Non-string values are rendered with fmt.
func ParseCaptions(raw string) (Captions, error) {
	text := strings.TrimSpace(raw)

	var lastErr error
	for _, cand := range candidates(text) {
		obj, err := decodeObject(cand)
		if err != nil {
			lastErr = err
			continue
		}
		return Captions{
			InstagramVersion: field(obj, "instagram_version"),
			TwitterVersion:   field(obj, "twitter_version"),
		}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("empty output")
	}
	return Captions{}, fmt.Errorf("%w: %v", ErrMalformedOutput, lastErr)
}

func candidates(text string) []string {
	var out []string
	if i := indexJSONFence(text); i >= 0 {
		out = append(out, fenceBody(text, i+len(jsonFence)))
	} else if i := strings.Index(text, fence); i >= 0 {
		body := fenceBody(text, i+len(fence))
		// a bare language tag on the opening line, e.g. ```JSON5 or ```text
		if nl := strings.IndexByte(body, '\n'); nl > 0 && !strings.ContainsAny(body[:nl], "{}\"") {
			body = strings.TrimSpace(body[nl+1:])
		}
		out = append(out, body)
	}
	out = append(out, text)
	if i, j := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); i >= 0 && j > i {
		out = append(out, text[i:j+1])
	}
	return out
}

// indexJSONFence returns the byte offset in text of the first ``` marker
// followed by "json" in any ASCII case, or -1.
func indexJSONFence(text string) int {
	const tag = len(jsonFence) - len(fence)
	for off := 0; ; {
		i := strings.Index(text[off:], fence)
		if i < 0 {
			return -1
		}
		i += off
		if j := i + len(fence); j+tag <= len(text) && strings.EqualFold(text[j:j+tag], "json") {
			return i
		}
		off = i + len(fence)
	}
}

// fenceBody returns the text between start and the next fence marker.
func fenceBody(text string, start int) string {
	rest := text[start:]
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func decodeObject(s string) (map[string]any, error) {
	if s == "" {
		return nil, errors.New("empty candidate")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not an object")
	}
	return obj, nil
}

func field(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
