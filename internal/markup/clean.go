package markup

import (
	"regexp"
	"strings"
)

var (
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	angleBracketR = strings.NewReplacer("<", " ", ">", " ")
)

// CleanText strips markup-like fragments, collapses whitespace runs into a
// single space and trims the ends. A nil input yields nil; an empty or
// all-whitespace input yields a pointer to "".
//
// Stray angle brackets that do not form a tag are replaced with spaces so
// the result never contains '<' or '>'.
func CleanText(s *string) *string {
	if s == nil {
		return nil
	}
	out := tagRe.ReplaceAllString(*s, " ")
	out = angleBracketR.Replace(out)
	out = strings.Join(strings.Fields(out), " ")
	return &out
}
