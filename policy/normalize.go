// api/policy/normalize.go
package policy

import (
	"strings"
)

// Normalize canonicalizes a free-form action string to "verb:noun", per
// spec.md §4.A. Accepted input forms: "verb:noun", "verb noun",
// "Verb Noun", "verbNoun", "verb-noun", "verb_noun", or a single bare
// token "verb" (becomes "verb:*"). Multi-word nouns are joined with "_".
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if verb, noun, ok := strings.Cut(raw, ":"); ok {
		return joinVerbNoun(splitWords(verb), splitWords(noun))
	}

	words := splitWords(raw)
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return strings.ToLower(words[0]) + ":*"
	}
	return joinVerbNoun(words[:1], words[1:])
}

func joinVerbNoun(verbWords, nounWords []string) string {
	verb := strings.ToLower(strings.Join(verbWords, "_"))
	noun := strings.ToLower(strings.Join(nounWords, "_"))
	if noun == "" {
		noun = "*"
	}
	return verb + ":" + noun
}

// splitWords breaks a raw token on whitespace, hyphens, underscores, and
// camelCase boundaries, matching the spec's enumerated accepted forms.
func splitWords(s string) []string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = camelToSpaces(s)

	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func camelToSpaces(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if !(prev >= 'A' && prev <= 'Z') {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MatchGlob reports whether a glob pattern matches a value using the
// wildcard semantics of spec.md §4.A: "*" matches any single segment or
// substring within a glob token. Segments of a glob (resource patterns)
// are "/"-delimited and "/" is otherwise a literal, matched by "*" only
// when "*" is the last segment, which then covers any remaining depth.
func MatchGlob(pattern, value string) bool {
	if pattern == "" {
		pattern = "*"
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(value, "/"))
}

func matchSegments(patternSegs, valueSegs []string) bool {
	if len(patternSegs) != len(valueSegs) {
		// A trailing "*" segment matches any remaining depth, e.g. "a/*"
		// against "a/b/c" — consume greedily from the last pattern segment.
		if len(patternSegs) > 0 && patternSegs[len(patternSegs)-1] == "*" && len(valueSegs) >= len(patternSegs)-1 {
			for i := 0; i < len(patternSegs)-1; i++ {
				if !matchToken(patternSegs[i], valueSegs[i]) {
					return false
				}
			}
			return true
		}
		return false
	}
	for i, p := range patternSegs {
		if !matchToken(p, valueSegs[i]) {
			return false
		}
	}
	return true
}

// matchToken matches a single "/"-free glob token against a value using
// "*" as a wildcard that can stand for any substring, including empty.
func matchToken(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return pattern == value
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(value, parts[0]) {
		return false
	}
	value = value[len(parts[0]):]
	if !strings.HasSuffix(value, parts[len(parts)-1]) {
		return false
	}
	if len(parts) > 2 {
		value = value[:len(value)-len(parts[len(parts)-1])]
		for _, mid := range parts[1 : len(parts)-1] {
			idx := strings.Index(value, mid)
			if idx < 0 {
				return false
			}
			value = value[idx+len(mid):]
		}
	}
	return true
}

// MatchAction reports whether an action glob (already in "verb:noun" form,
// possibly with wildcards in either half) matches a normalized action.
func MatchAction(actionPattern, normalizedAction string) bool {
	pVerb, pNoun, pOK := strings.Cut(actionPattern, ":")
	aVerb, aNoun, aOK := strings.Cut(normalizedAction, ":")
	if !pOK || !aOK {
		return matchToken(actionPattern, normalizedAction)
	}
	return matchToken(pVerb, aVerb) && matchToken(pNoun, aNoun)
}
