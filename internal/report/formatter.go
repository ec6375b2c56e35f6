package report

import (
	"fmt"
	"strings"

	"github.com/intern-assistant/platform/internal/visit"
)

const (
	// maxFeedRows caps the printable feed section.
	maxFeedRows = 50
	// maxNoteLen hard-truncates note text in the feed section.
	maxNoteLen = 160
)

// Document is the structured printable report. Building it is a pure
// function of the aggregation results; page layout belongs to the
// rendering engine.
type Document struct {
	Title       string
	Summary     []string
	Performance []PerformanceRow
	Feed        []FeedRow
}

// PerformanceRow is one line of the per-author performance table.
type PerformanceRow struct {
	Author   string
	Patients int
	Visits   int
	Critical int
}

// FeedRow is one line of the printable department feed.
type FeedRow struct {
	Time      string
	PatientID string
	Author    string
	Text      string
}

// Title composes the document title from day, department and the
// optional author filter.
func Title(day, department, author string) string {
	title := fmt.Sprintf("Gün Sonu Özeti — %s — Bölüm: %s", day, department)
	if author != "" {
		title += " — " + author
	}
	return title
}

// Build assembles a Document from the daily summary lines, the
// per-author detail and the window's visit entries. Authors are sorted
// alphabetically; feed notes are truncated to 160 characters with
// newlines collapsed, at most 50 entries.
func Build(title string, lines []string, detail map[string]visit.AuthorDetail, entries []visit.Entry) *Document {
	doc := &Document{Title: title, Summary: lines}

	for _, author := range visit.SortedAuthors(detail) {
		d := detail[author]
		doc.Performance = append(doc.Performance, PerformanceRow{
			Author:   author,
			Patients: d.Patients,
			Visits:   d.Visits,
			Critical: d.Critical,
		})
	}

	for _, e := range entries {
		if len(doc.Feed) == maxFeedRows {
			break
		}
		doc.Feed = append(doc.Feed, FeedRow{
			Time:      e.TS.Format("15:04"),
			PatientID: e.PatientID,
			Author:    e.Author,
			Text:      truncateNote(e.Text),
		})
	}

	return doc
}

// truncateNote collapses newlines to spaces and hard-truncates to
// maxNoteLen characters.
func truncateNote(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	runes := []rune(text)
	if len(runes) > maxNoteLen {
		runes = runes[:maxNoteLen]
	}
	return string(runes)
}
