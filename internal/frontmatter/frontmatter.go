// Package frontmatter reads the loose key: value header that writeups carry.
//
// The format is deliberately forgiving. It is not YAML: a line is a pair if it
// has a colon, everything else is ignored, and nothing is ever rejected.
package frontmatter

import "strings"

const delimiter = "---"

// Frontmatter is an ordered set of string pairs.
type Frontmatter struct {
	keys   []string
	values map[string]string
}

// Parse extracts the frontmatter block from the top of content. Content
// without a complete block yields an empty Frontmatter.
func Parse(content string) Frontmatter {
	fm := Frontmatter{values: map[string]string{}}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, delimiter+"\n") {
		return fm
	}
	end := strings.Index(content[4:], "\n"+delimiter+"\n")
	if end == -1 {
		return fm
	}
	block := strings.TrimSpace(content[4 : end+4])

	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fm.set(strings.TrimSpace(key), strings.Trim(strings.TrimSpace(value), `"'`))
	}
	return fm
}

func (f *Frontmatter) set(key, value string) {
	if _, seen := f.values[key]; !seen {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value for key and whether it was present at all. A key
// present with an empty value is still present.
func (f Frontmatter) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// GetOr returns the value for key, or fallback when the key is absent.
func (f Frontmatter) GetOr(key, fallback string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return fallback
}

// Keys returns the keys in the order they first appeared.
func (f Frontmatter) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f Frontmatter) Len() int { return len(f.keys) }

// Strip drops a leading frontmatter block and returns what follows it with
// leading whitespace removed. Text that does not open with a delimiter is
// returned left-trimmed and otherwise unchanged.
func Strip(content string) string {
	content = strings.TrimLeft(content, " \t\r\n\v\f")
	if !strings.HasPrefix(content, delimiter) {
		return content
	}
	parts := strings.SplitN(content, delimiter, 3)
	if len(parts) < 3 {
		return content
	}
	return strings.TrimLeft(parts[2], " \t\r\n\v\f")
}
