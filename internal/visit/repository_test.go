package visit

import (
	"context"
	"testing"
	"time"
)

func TestPatientGroups(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewRepository(db)

	win, err := DayWindow("2025-03-10")
	if err != nil {
		t.Fatalf("DayWindow() error = %v", err)
	}

	day := []*Visit{
		{PatientID: "PX-aaaa1111", AuthorID: 1, Text: "not", Department: "GENEL", TS: win.Start.Add(8 * time.Hour)},
		{PatientID: "PX-aaaa1111", AuthorID: 1, Text: "not", Department: "GENEL", TS: win.Start.Add(14 * time.Hour)},
		{PatientID: "PX-bbbb2222", AuthorID: 1, Text: "not", Department: "GENEL", TS: win.Start.Add(10 * time.Hour)},
		{PatientID: "PX-cccc3333", AuthorID: 2, Text: "not", Department: "GENEL", TS: win.Start.Add(9 * time.Hour)},
		// Outside the window, must not count.
		{PatientID: "PX-aaaa1111", AuthorID: 1, Text: "not", Department: "GENEL", TS: win.End.Add(time.Hour)},
	}
	for _, v := range day {
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("failed to create visit: %v", err)
		}
	}

	// The grouped query must work against the embedded sqlite store.
	groups, err := repo.PatientGroups(ctx, Filter{Window: win, Department: "ALL"})
	if err != nil {
		t.Fatalf("PatientGroups() error = %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	// Newest last visit first.
	wantOrder := []string{"PX-aaaa1111", "PX-bbbb2222", "PX-cccc3333"}
	for i, want := range wantOrder {
		if groups[i].PatientID != want {
			t.Errorf("groups[%d].PatientID = %s, want %s", i, groups[i].PatientID, want)
		}
	}

	if groups[0].Count != 2 {
		t.Errorf("PX-aaaa1111 Count = %d, want 2", groups[0].Count)
	}
	if !groups[0].LastTS.Equal(win.Start.Add(14 * time.Hour)) {
		t.Errorf("PX-aaaa1111 LastTS = %v, want %v", groups[0].LastTS, win.Start.Add(14*time.Hour))
	}

	authorID := uint(1)
	scoped, err := repo.PatientGroups(ctx, Filter{Window: win, Department: "ALL", AuthorID: &authorID})
	if err != nil {
		t.Fatalf("PatientGroups() error = %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("got %d author-scoped groups, want 2", len(scoped))
	}
}
