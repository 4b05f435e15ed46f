package timewindow

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize_ProducesAbsoluteInstants(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	win, err := Normalize("2024-06-01", "18:00", "20:00", loc)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	wantStart := time.Date(2024, 6, 1, 18, 0, 0, 0, loc).UTC()
	wantEnd := time.Date(2024, 6, 1, 20, 0, 0, 0, loc).UTC()
	if !win.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", win.Start, wantStart)
	}
	if !win.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", win.End, wantEnd)
	}
	if win.Start.Location() != time.UTC {
		t.Errorf("Start location = %v, want UTC", win.Start.Location())
	}
}

func TestNormalize_ReferentiallyTransparent(t *testing.T) {
	first, err := Normalize("2024-06-01", "09:30", "11:00", time.UTC)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	second, err := Normalize("2024-06-01", "09:30", "11:00", time.UTC)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if !first.Start.Equal(second.Start) || !first.End.Equal(second.End) {
		t.Errorf("same inputs produced different instants: %v vs %v", first, second)
	}
}

func TestNormalize_InvertedWindowIsNotRejected(t *testing.T) {
	// Start >= End is a draft-level precondition, not a parsing failure.
	win, err := Normalize("2024-06-01", "18:00", "17:00", time.UTC)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if !win.Start.After(win.End) {
		t.Errorf("expected Start > End, got Start=%v End=%v", win.Start, win.End)
	}
}

func TestNormalize_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		start string
		end   string
	}{
		{"missing date", "", "18:00", "20:00"},
		{"missing start", "2024-06-01", "", "20:00"},
		{"missing end", "2024-06-01", "18:00", ""},
		{"garbage date", "junk", "18:00", "20:00"},
		{"garbage start", "2024-06-01", "6pm", "20:00"},
		{"garbage end", "2024-06-01", "18:00", "25:99"},
		{"whitespace only", "   ", "18:00", "20:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.date, tt.start, tt.end, time.UTC)
			if !errors.Is(err, ErrInvalidTimeInput) {
				t.Errorf("Normalize(%q, %q, %q) error = %v, want ErrInvalidTimeInput", tt.date, tt.start, tt.end, err)
			}
		})
	}
}

func TestNormalize_NilLocationDefaultsToLocal(t *testing.T) {
	win, err := Normalize("2024-06-01", "10:00", "11:00", nil)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	want := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local).UTC()
	if !win.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", win.Start, want)
	}
}
