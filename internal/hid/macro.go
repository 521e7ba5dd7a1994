package hid

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseMacro converts macro text into the strokes that type it.
//
// Plain text is typed with a US layout. {NAME} sends a special key such as
// {ENTER} or {TAB}; {MOD+KEY} sends a chord such as {CTRL+C} or
// {CTRL+SHIFT+T}. {{ and }} type literal braces. An unclosed brace or an
// unknown sequence is typed as written.
func ParseMacro(macro string) ([]Stroke, error) {
	var out []Stroke

	typeText := func(text string, offset int) error {
		for j, r := range text {
			s, ok := StrokeFor(r)
			if !ok {
				return fmt.Errorf("macro: no key for %q at offset %d", r, offset+j)
			}
			out = append(out, s)
		}
		return nil
	}

	for i := 0; i < len(macro); {
		rest := macro[i:]
		switch {
		case strings.HasPrefix(rest, "{{"):
			out = append(out, usLayout['{'])
			i += 2
			continue
		case strings.HasPrefix(rest, "}}"):
			out = append(out, usLayout['}'])
			i += 2
			continue
		case rest[0] != '{':
			_, size := utf8.DecodeRuneInString(rest)
			if err := typeText(rest[:size], i); err != nil {
				return nil, err
			}
			i += size
			continue
		}

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			out = append(out, usLayout['{'])
			i++
			continue
		}

		if s, ok := parseSequence(strings.ToUpper(rest[1:end])); ok {
			out = append(out, s)
		} else if err := typeText(rest[:end+1], i); err != nil {
			return nil, err
		}
		i += end + 1
	}

	return out, nil
}

// parseSequence resolves the inside of a {...} sequence.
func parseSequence(seq string) (Stroke, bool) {
	if !strings.Contains(seq, "+") {
		k, ok := specialKeys[seq]
		return Stroke{Key: k}, ok
	}

	var s Stroke
	found := false
	for _, part := range strings.Split(seq, "+") {
		part = strings.TrimSpace(part)
		if m, ok := modifierNames[part]; ok {
			s.Modifiers |= m
			continue
		}
		if k, ok := keyByName(part); ok {
			s.Key = k
			found = true
		}
	}
	return s, found
}
