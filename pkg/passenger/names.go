package passenger

import (
	"regexp"
	"strings"
)

var (
	// maiden or alias name closing the name string: "Smith, Mrs. John (Mary Jones)"
	aliasRegEx = regexp.MustCompile(`([A-Za-z'-]+)\)$`)

	// double-barrelled surname: "Duff-Gordon"
	hyphenRegEx = regexp.MustCompile(`^[A-Za-z]+-([A-Za-z]+)$`)
)

// ExtractLastname returns the part of the name before the first comma.
func ExtractLastname(name string) string {
	last, _, _ := strings.Cut(name, ",")
	return last
}

// ExtractSecondaryLastname returns the alternate surname of a passenger:
// the last word of a trailing parenthesized alias, or the second half of a
// hyphenated lastname. Nil when neither is present.
func ExtractSecondaryLastname(name, lastname string) *string {
	if m := aliasRegEx.FindStringSubmatch(name); m != nil {
		return &m[1]
	}
	if m := hyphenRegEx.FindStringSubmatch(lastname); m != nil {
		return &m[1]
	}
	return nil
}
