package models

import "time"

// RawRow is one spreadsheet row as produced by the file or sheet-sync layer:
// dynamic column headers mapped to whatever cell value the source held.
type RawRow map[string]any

// TestResponse is the typed form of one exam submission row after alias
// resolution. Answers maps question number to the raw (unparsed) answer cell.
type TestResponse struct {
	Timestamp time.Time
	StudentID string
	Grade     string
	ExamID    string
	Answers   map[int]string
}

// BookResponse is the typed form of one textbook submission row. RangeStart is
// the absolute number of the first question in the row's answer block; answer
// positions within the row are relative to it.
type BookResponse struct {
	Timestamp  time.Time
	StudentID  string
	BookName   string
	Subject    string
	RangeStart int
	Answers    map[int]string
}
