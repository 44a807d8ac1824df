// Package course canonicalizes free-text course names so that the course a user
// declares can be compared against the course tag of indexed passages.
package course

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"jotha-be/pkg/store"
)

// Separator joins the words of a normalized key. Matches the ingestion job.
const Separator = "_"

// General is the key of course-agnostic passages.
const General = store.CourseGeneral

// Normalize lower-cases text, strips diacritics and collapses whitespace runs
// into a single Separator. It is total and idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	return strings.Join(strings.Fields(strings.ToLower(folded)), Separator)
}

// IsGeneral reports whether a passage course tag applies to every course.
func IsGeneral(docCourse string) bool {
	key := Normalize(docCourse)
	return key == "" || key == General
}

// Matches implements the course eligibility rule: "geral" passages always
// match, otherwise the normalized keys must be equal or one must contain the
// other. An empty user course only matches "geral" passages.
func Matches(userCourse, docCourse string) bool {
	if IsGeneral(docCourse) {
		return true
	}

	user := Normalize(userCourse)
	if user == "" {
		return false
	}

	doc := Normalize(docCourse)
	return user == doc || strings.Contains(doc, user) || strings.Contains(user, doc)
}

// MatchesSpecific is Matches without the "geral" shortcut: it is true only for
// passages tagged with the user's own course.
func MatchesSpecific(userCourse, docCourse string) bool {
	return !IsGeneral(docCourse) && Matches(userCourse, docCourse)
}
