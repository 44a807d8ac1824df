package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"jotha-be/pkg/rag/course"
)

// MinFAQBlockLen is the shortest numbered section kept by SplitFAQ.
const MinFAQBlockLen = 50

var (
	sectionStart = regexp.MustCompile(`\n\d{1,3}\.\s`)
	courseHeader = regexp.MustCompile(`(?i)CURSO(S)? (T[ÉE]CNICO|SUPERIOR|DE|EM|LICENCIATURA|BACHARELADO)[^\n]*`)
	coursePrefix = regexp.MustCompile(`(?i)CURSOS? `)
)

// FAQBlock is one numbered FAQ section ready to be embedded.
type FAQBlock struct {
	Text      string
	Course    string // raw course name as written in the section, "" when absent
	CourseKey string // normalized course, "geral" when absent
	SearchKey string // first line of the section (its question heading)
}

// SplitFAQ cuts the FAQ text right before every "\n<n>. " heading and keeps
// the sections with at least MinFAQBlockLen characters.
func SplitFAQ(text string) []FAQBlock {
	var raw []string
	last := 0
	for _, loc := range sectionStart.FindAllStringIndex(text, -1) {
		raw = append(raw, text[last:loc[0]])
		last = loc[0]
	}
	raw = append(raw, text[last:])

	var blocks []FAQBlock
	for _, r := range raw {
		block := strings.TrimSpace(r)
		if utf8.RuneCountInString(block) < MinFAQBlockLen {
			continue
		}

		name := ExtractCourse(block)
		key := course.General
		if name != "" {
			key = course.Normalize(name)
		}

		blocks = append(blocks, FAQBlock{
			Text:      block,
			Course:    name,
			CourseKey: key,
			SearchKey: firstLine(block),
		})
	}
	return blocks
}

// ExtractCourse returns the course named in a FAQ section without its
// "Curso"/"Cursos" prefix, or "" when the section names none.
func ExtractCourse(text string) string {
	m := courseHeader.FindString(text)
	if m == "" {
		return ""
	}
	return strings.TrimSpace(coursePrefix.ReplaceAllString(m, ""))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
