// Package wildcard implements the agent's wildcard expressions used by list
// options such as disable_instrumentations and sanitize_field_names.
//
// An expression matches text literally except that '*' matches any run of
// characters (including none). Matching is case-insensitive unless the
// expression starts with the "(?-i)" prefix. An empty expression matches only
// empty text.
package wildcard

import "strings"

const caseSensitivePrefix = "(?-i)"

// Matcher is a compiled wildcard expression.
type Matcher struct {
	caseSensitive bool
	// segments are the literal pieces between wildcards, lower-cased unless
	// caseSensitive; raw keeps them as written.
	segments      []string
	raw           []string
	startsWithAny bool
	endsWithAny   bool
}

// New compiles expr. Consecutive '*' are collapsed into one.
func New(expr string) *Matcher {
	m := &Matcher{}
	body := expr
	if strings.HasPrefix(body, caseSensitivePrefix) {
		m.caseSensitive = true
		body = body[len(caseSensitivePrefix):]
	}

	m.startsWithAny = strings.HasPrefix(body, "*")
	m.endsWithAny = strings.HasSuffix(body, "*")

	for _, part := range strings.Split(body, "*") {
		if part == "" {
			continue
		}
		m.raw = append(m.raw, part)
		if !m.caseSensitive {
			part = strings.ToLower(part)
		}
		m.segments = append(m.segments, part)
	}
	return m
}

// Match reports whether text matches the expression.
func (m *Matcher) Match(text string) bool {
	if !m.caseSensitive {
		text = strings.ToLower(text)
	}

	if len(m.segments) == 0 {
		if m.startsWithAny || m.endsWithAny {
			return true
		}
		return text == ""
	}

	if !m.startsWithAny && !m.endsWithAny && len(m.segments) == 1 {
		return text == m.segments[0]
	}

	segments := m.segments
	if !m.startsWithAny {
		if !strings.HasPrefix(text, segments[0]) {
			return false
		}
		text = text[len(segments[0]):]
		segments = segments[1:]
	}

	var last string
	if !m.endsWithAny && len(segments) > 0 {
		last = segments[len(segments)-1]
		segments = segments[:len(segments)-1]
	}

	for _, seg := range segments {
		idx := strings.Index(text, seg)
		if idx < 0 {
			return false
		}
		text = text[idx+len(seg):]
	}

	if m.endsWithAny {
		return true
	}
	return strings.HasSuffix(text, last)
}

// String returns the normalized expression.
func (m *Matcher) String() string {
	var b strings.Builder
	if m.caseSensitive {
		b.WriteString(caseSensitivePrefix)
	}
	if m.startsWithAny {
		b.WriteByte('*')
	}
	for i, seg := range m.raw {
		if i > 0 {
			b.WriteByte('*')
		}
		b.WriteString(seg)
	}
	if m.endsWithAny && len(m.raw) > 0 {
		b.WriteByte('*')
	}
	return b.String()
}

// List is a comma separated list of expressions; it matches when any member does.
type List []*Matcher

// ParseList splits s on commas, trimming whitespace around each expression.
// Blank members are ignored.
func ParseList(s string) List {
	var list List
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		list = append(list, New(item))
	}
	return list
}

// Match reports whether any expression in the list matches text.
func (l List) Match(text string) bool {
	for _, m := range l {
		if m.Match(text) {
			return true
		}
	}
	return false
}

// String joins the normalized expressions with ", ".
func (l List) String() string {
	parts := make([]string, len(l))
	for i, m := range l {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
