package specification

import (
	"gorm.io/gorm"
)

// ByCorpus restricts passages to one logical index.
type ByCorpus struct {
	Corpus string
}

func (s ByCorpus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("corpus = ?", s.Corpus)
}

// MatchingCourse keeps general passages plus those whose course key equals,
// contains, or is contained in CourseKey. An empty CourseKey keeps only
// general passages.
type MatchingCourse struct {
	CourseKey string
	General   string
}

func (s MatchingCourse) Apply(db *gorm.DB) *gorm.DB {
	general := s.General
	if general == "" {
		general = "geral"
	}
	if s.CourseKey == "" {
		return db.Where("(course_key = ? OR course_key = '')", general)
	}
	return db.Where(
		"(course_key = ? OR course_key = '' OR course_key = ? OR strpos(course_key, ?) > 0 OR strpos(?, course_key) > 0)",
		general, s.CourseKey, s.CourseKey, s.CourseKey,
	)
}

// QuestionText matches an unanswered question exactly.
type QuestionText struct {
	Question string
}

func (s QuestionText) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("question = ?", s.Question)
}
