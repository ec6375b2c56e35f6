package visit

import (
	"testing"
	"time"
)

func TestDayWindowExplicitDate(t *testing.T) {
	win, err := DayWindow("2025-03-10")
	if err != nil {
		t.Fatalf("DayWindow() error = %v", err)
	}

	wantStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !win.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", win.Start, wantStart)
	}
	if !win.End.Equal(wantStart.Add(24 * time.Hour)) {
		t.Errorf("End = %v, want %v", win.End, wantStart.Add(24*time.Hour))
	}
	if win.Day() != "2025-03-10" {
		t.Errorf("Day() = %q, want 2025-03-10", win.Day())
	}
}

func TestDayWindowDefaultsToToday(t *testing.T) {
	win, err := DayWindow("")
	if err != nil {
		t.Fatalf("DayWindow() error = %v", err)
	}

	now := LocalNow()
	if win.Day() != now.Format("2006-01-02") {
		t.Errorf("Day() = %q, want today %q", win.Day(), now.Format("2006-01-02"))
	}
	if !win.Contains(now) {
		t.Errorf("today's window does not contain the current local time %v", now)
	}
}

func TestDayWindowInvalidDate(t *testing.T) {
	tests := []string{"10-03-2025", "2025/03/10", "yesterday", "2025-13-01"}

	for _, day := range tests {
		if _, err := DayWindow(day); err == nil {
			t.Errorf("DayWindow(%q) expected error, got none", day)
		}
	}
}

func TestWindowBoundaries(t *testing.T) {
	win, err := DayWindow("2025-03-10")
	if err != nil {
		t.Fatalf("DayWindow() error = %v", err)
	}

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"midnight is inside", win.Start, true},
		{"second before midnight is outside", win.Start.Add(-time.Second), false},
		{"second before next midnight is inside", win.End.Add(-time.Second), true},
		{"next midnight is outside", win.End, false},
		{"noon is inside", win.Start.Add(12 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := win.Contains(tt.ts); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}
