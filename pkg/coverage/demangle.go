package coverage

import "strings"

// DefaultDemangler provides a minimal, dependency-free demangler for the
// two mangling schemes LCOV entries are documented to mix (spec §4.7,
// §6): Rust v0 ("_RNv...") and Itanium C++ ("_ZN..."). It recognizes the
// common "length-prefixed path segment" encoding both schemes share and
// reconstructs a "::"-joined qualified name; anything it cannot parse
// returns ok=false so the caller falls back to the original symbol.
func DefaultDemangler(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, "_RNv"):
		return demangleLengthPrefixed(name[len("_RNv"):])
	case strings.HasPrefix(name, "_ZN"):
		rest := strings.TrimSuffix(name[len("_ZN"):], "E")

		return demangleLengthPrefixed(rest)
	default:
		return name, false
	}
}

// demangleLengthPrefixed decodes a sequence of "<digits><chars>" segments
// (e.g. "3foo3bar" -> "foo::bar"), the common shape of both mangling
// schemes' path encoding once their scheme-specific prefix is stripped.
func demangleLengthPrefixed(s string) (string, bool) {
	var segments []string

	i := 0
	for i < len(s) {
		digitsStart := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}

		if i == digitsStart {
			return "", false
		}

		length := 0
		for _, d := range s[digitsStart:i] {
			length = length*10 + int(d-'0')
		}

		if i+length > len(s) {
			return "", false
		}

		segments = append(segments, s[i:i+length])
		i += length
	}

	if len(segments) == 0 {
		return "", false
	}

	return strings.Join(segments, "::"), true
}
