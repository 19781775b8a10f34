package core

import "strings"

// IsFQDN reports whether s qualifies as a fully qualified domain name and
// should therefore go through the resolver rather than the literal parser.
// The rule set is deliberately strict: the first character must be
// alphanumeric, every character must be alphanumeric, '-' or '.', no two
// dots may be adjacent, at least one dot is required, and the last
// character before an optional trailing ',' must be a letter. A ':' anywhere
// disqualifies the string (IPv6 literal). Anything ending in a digit, an
// IPv4 literal in particular, is classified as non-FQDN on purpose.
func IsFQDN(s string) bool {
	if s == "" || !isAlnum(s[0]) || strings.IndexByte(s, ':') >= 0 {
		return false
	}
	dot := false
	i := 1
	for i < len(s) && s[i] != ',' {
		c := s[i]
		if c == '.' {
			dot = true
			if s[i-1] == '.' {
				return false
			}
		}
		if !isAlnum(c) && c != '-' && c != '.' {
			return false
		}
		i++
	}
	last := s[i-1]
	if last == '.' || !isAlpha(last) {
		return false
	}
	return dot
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9'
}
