// Package extractor pulls labeled fields out of free-form user text.
// Extraction never fails: a field that cannot be read is reported as absent.
package extractor

import (
	"encoding/json"
	"regexp"
	"strings"
)

var numberedItem = regexp.MustCompile(`^\s*\d+\.\s*(.+)$`)

func fieldPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*([^\n]+)(?:\n|$)`)
}

func labelLinePattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[ \t]*([^\n]*)`)
}

// Field returns the trimmed text of the first line following the first
// case-insensitive occurrence of label.
func Field(text, label string) (string, bool) {
	m := fieldPattern(label).FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	if value == "" {
		return "", false
	}
	return value, true
}

// List reads a list-valued field: a comma-separated value, a numbered block
// following the label, or a single-element list of the raw value.
func List(text, label string) ([]string, bool) {
	value, ok := Field(text, label)
	if !ok {
		return nil, false
	}

	if strings.Contains(value, ",") {
		items := splitTrim(value, ",")
		if len(items) > 0 {
			return items, true
		}
		return nil, false
	}

	if items := numberedBlock(text, label); len(items) > 0 {
		return items, true
	}

	return []string{value}, true
}

// numberedBlock collects "N. item" lines starting on the label line (or right after it).
func numberedBlock(text, label string) []string {
	loc := labelLinePattern(label).FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}

	var items []string
	rest := strings.TrimSpace(text[loc[2]:loc[3]])
	if m := numberedItem.FindStringSubmatch(rest); m != nil {
		items = append(items, strings.TrimSpace(m[1]))
	} else if rest != "" {
		return nil
	}

	following := strings.TrimPrefix(text[loc[1]:], "\n")
	for _, line := range strings.Split(following, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(items) == 0 {
				continue
			}
			break
		}
		m := numberedItem.FindStringSubmatch(line)
		if m == nil {
			break
		}
		items = append(items, strings.TrimSpace(m[1]))
	}

	return items
}

// JSON reads a JSON-like field. Brace-wrapped text is returned verbatim,
// loose "key: value" pairs are converted to an object, anything else
// becomes {"value": "<raw>"}.
func JSON(text, label string) (string, bool) {
	value, ok := Field(text, label)
	if !ok {
		return "", false
	}

	if strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		return value, true
	}

	if pairs := loosePairs(value); len(pairs) > 0 {
		raw, _ := json.Marshal(pairs)
		return string(raw), true
	}

	raw, _ := json.Marshal(map[string]string{"value": value})
	return string(raw), true
}

func loosePairs(value string) map[string]string {
	pairs := make(map[string]string)
	for _, part := range strings.Split(value, ",") {
		key, val, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `"'`)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if key == "" || val == "" {
			continue
		}
		pairs[key] = val
	}
	return pairs
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
