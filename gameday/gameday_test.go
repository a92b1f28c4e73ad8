package gameday

import (
	"testing"
	"time"
)

func TestStartBoundary(t *testing.T) {
	loc := time.UTC
	before := time.Date(2024, 3, 10, 7, 59, 0, 0, loc)
	after := time.Date(2024, 3, 10, 8, 1, 0, 0, loc)

	if got, want := Start(before, loc), time.Date(2024, 3, 9, 8, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("07:59 start = %v, want %v", got, want)
	}
	if got, want := Start(after, loc), time.Date(2024, 3, 10, 8, 0, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("08:01 start = %v, want %v", got, want)
	}
	if Same(before, after, loc) {
		t.Fatalf("07:59 and 08:01 must be different game-days")
	}
}

func TestStartExactlyAtEight(t *testing.T) {
	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	if !Start(at, time.UTC).Equal(at) {
		t.Fatalf("08:00 should open its own game-day")
	}
}

func TestStartAcrossMonthAndYear(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC), time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := Start(c.in, time.UTC); !got.Equal(c.want) {
			t.Fatalf("Start(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestStartBoundsAndIdempotence(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	base := time.Date(2024, 3, 29, 0, 0, 0, 0, loc)
	// walk across the spring DST change in 37 minute steps
	for i := 0; i < 24*60*5/37; i++ {
		ts := base.Add(time.Duration(i*37) * time.Minute)
		start := Start(ts, loc)
		end := End(start)
		if ts.Before(start) || !ts.Before(end) {
			t.Fatalf("%v outside [%v, %v)", ts, start, end)
		}
		if !Start(start, loc).Equal(start) {
			t.Fatalf("Start not idempotent for %v", ts)
		}
		if !Contains(start, ts) {
			t.Fatalf("Contains(%v, %v) = false", start, ts)
		}
		if !Start(end, loc).Equal(end) {
			t.Fatalf("end %v must open the next game-day", end)
		}
	}
}

func TestStartUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	// 06:00 UTC is 09:00 at UTC+3
	ts := time.Date(2024, 5, 5, 6, 0, 0, 0, time.UTC)
	want := time.Date(2024, 5, 5, 8, 0, 0, 0, loc)
	if got := Start(ts, loc); !got.Equal(want) {
		t.Fatalf("Start = %v, want %v", got, want)
	}
	if got := Start(ts, time.UTC); !got.Equal(time.Date(2024, 5, 4, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("UTC start = %v", got)
	}
}

func TestPreviousAndLabel(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if got := Previous(start); !got.Equal(time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("Previous = %v", got)
	}
	if got := Label(time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC), time.UTC); got != "2024-03-01" {
		t.Fatalf("Label = %q", got)
	}
	parsed, err := Parse("2024-03-01", time.UTC)
	if err != nil || !parsed.Equal(start) {
		t.Fatalf("Parse = %v, %v", parsed, err)
	}
	if _, err := Parse("03/01/2024", time.UTC); err == nil {
		t.Fatalf("expected parse error")
	}
}
