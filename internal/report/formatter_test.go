package report

import (
	"strings"
	"testing"
	"time"

	"github.com/intern-assistant/platform/internal/visit"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name       string
		day        string
		department string
		author     string
		want       string
	}{
		{
			name: "without author", day: "2025-03-10", department: "ALL",
			want: "Gün Sonu Özeti — 2025-03-10 — Bölüm: ALL",
		},
		{
			name: "with author", day: "2025-03-10", department: "GENEL", author: "E. Sude",
			want: "Gün Sonu Özeti — 2025-03-10 — Bölüm: GENEL — E. Sude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.day, tt.department, tt.author); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildSortsPerformance(t *testing.T) {
	detail := map[string]visit.AuthorDetail{
		"M. Demir":  {Patients: 1, Visits: 2},
		"A. Yılmaz": {Patients: 3, Visits: 4, Critical: 1},
		"E. Sude":   {Patients: 2, Visits: 3},
	}

	doc := Build("t", nil, detail, nil)

	if len(doc.Performance) != 3 {
		t.Fatalf("got %d performance rows, want 3", len(doc.Performance))
	}
	wantOrder := []string{"A. Yılmaz", "E. Sude", "M. Demir"}
	for i, want := range wantOrder {
		if doc.Performance[i].Author != want {
			t.Errorf("Performance[%d].Author = %q, want %q", i, doc.Performance[i].Author, want)
		}
	}
	if doc.Performance[0].Critical != 1 {
		t.Errorf("Performance[0].Critical = %d, want 1", doc.Performance[0].Critical)
	}
}

func TestBuildCapsFeed(t *testing.T) {
	ts := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	entries := make([]visit.Entry, 60)
	for i := range entries {
		entries[i] = visit.Entry{PatientID: "PX-aaaa1111", Author: "E. Sude", Text: "not", TS: ts}
	}

	doc := Build("t", nil, nil, entries)

	if len(doc.Feed) != 50 {
		t.Errorf("got %d feed rows, want cap of 50", len(doc.Feed))
	}
	if doc.Feed[0].Time != "09:30" {
		t.Errorf("Feed[0].Time = %q, want 09:30", doc.Feed[0].Time)
	}
}

func TestTruncateNote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short passes through", "kısa not", "kısa not"},
		{"newlines collapse", "satır bir\nsatır iki\r\nsatır üç", "satır bir satır iki satır üç"},
		{"long is truncated", strings.Repeat("a", 200), strings.Repeat("a", 160)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateNote(tt.in); got != tt.want {
				t.Errorf("truncateNote() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateNoteMultibyte(t *testing.T) {
	// Truncation counts characters, never splits a multi-byte rune.
	in := strings.Repeat("ş", 200)
	got := truncateNote(in)
	if len([]rune(got)) != 160 {
		t.Errorf("got %d runes, want 160", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "ş") {
		t.Errorf("truncation split a rune: %q", got[len(got)-4:])
	}
}
