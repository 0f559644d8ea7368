package ports

import (
	"strings"
)

// hasClass reports whether className's whitespace-separated tokens include
// cls.
func hasClass(className, cls string) bool {
	for _, token := range strings.Fields(className) {
		if token == cls {
			return true
		}
	}
	return false
}

// addClass appends " "+cls unless the token is already present.
func addClass(className, cls string) string {
	if hasClass(className, cls) {
		return className
	}
	return className + " " + cls
}

// removeClass replaces every occurrence of the token cls, together with
// the whitespace character before it, with a single space. Neighbouring
// tokens are left as they are.
func removeClass(className, cls string) string {
	if cls == "" {
		return className
	}
	var sb strings.Builder
	last := 0
	for i := 0; i < len(className); {
		if end, ok := matchClassAt(className, cls, i); ok {
			sb.WriteString(className[last:i])
			sb.WriteByte(' ')
			last, i = end, end
			continue
		}
		i++
	}
	if last == 0 {
		return className
	}
	sb.WriteString(className[last:])
	return sb.String()
}

// matchClassAt matches cls at i, either at the start of the string or
// after one whitespace character, and requires whitespace or the end of
// the string after it. It returns the end of the match.
func matchClassAt(s, cls string, i int) (int, bool) {
	token := func(j int) (int, bool) {
		if !strings.HasPrefix(s[j:], cls) {
			return 0, false
		}
		k := j + len(cls)
		return k, k == len(s) || isSpace(s[k])
	}
	if i == 0 {
		if end, ok := token(0); ok {
			return end, true
		}
	}
	if isSpace(s[i]) {
		return token(i + 1)
	}
	return 0, false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
