package wiki

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// hexGroup matches the wiki's quoting of non-ASCII bytes, e.g. "(c3a1)".
var hexGroup = regexp.MustCompile(`\(([a-f0-9]{2,4})\)`)

// PageIdentity pairs the on-disk page directory name with its display name.
type PageIdentity struct {
	Encoded string
	Decoded string
}

// NewPageIdentity decodes an encoded page directory name.
func NewPageIdentity(encoded string) PageIdentity {
	return PageIdentity{Encoded: encoded, Decoded: DecodePageName(encoded)}
}

// DecodePageName reverses the wiki's parenthesized-hex page name quoting.
//
// Every "(hhhh)" group is rewritten as "%hh%hh" and the result is
// percent-decoded. Anything that does not look like a group or a valid
// percent escape is left as is.
func DecodePageName(encoded string) string {
	rewritten := hexGroup.ReplaceAllStringFunc(encoded, func(group string) string {
		digits := group[1 : len(group)-1]
		var b strings.Builder
		// An odd trailing digit is dropped.
		for i := 0; i+2 <= len(digits); i += 2 {
			b.WriteByte('%')
			b.WriteString(digits[i : i+2])
		}
		return b.String()
	})
	return unquote(rewritten)
}

// unquote percent-decodes s, passing malformed escapes through unchanged.
func unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// PagePath returns the slash-separated repository path for a decoded page name.
// Names that would escape the repository root are rejected.
func PagePath(decoded, extension string) (string, error) {
	if decoded == "" {
		return "", fmt.Errorf("empty page name")
	}
	p := decoded
	if extension != "" {
		p += "." + extension
	}
	cleaned := path.Clean(p)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("page path escapes repository root: %q", decoded)
	}
	return cleaned, nil
}
