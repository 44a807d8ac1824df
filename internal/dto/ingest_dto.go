package dto

// PassageDraft is one chunk of a source document waiting to be embedded.
type PassageDraft struct {
	Content   string `json:"content"`
	Course    string `json:"course"`
	CourseKey string `json:"course_key"`
	SearchKey string `json:"search_key,omitempty"`
	File      string `json:"file,omitempty"`
}

// IndexCorpusMessage replaces every passage of a corpus.
type IndexCorpusMessage struct {
	Corpus   string         `json:"corpus"`
	Passages []PassageDraft `json:"passages"`
}
