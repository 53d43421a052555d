package comm

import (
	"testing"
	"time"

	"fmn/internal/task"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "1d1h1m1s", want: 25*time.Hour + time.Minute + time.Second},
		{raw: "2h", want: 2 * time.Hour},
		{raw: "30s", want: 30 * time.Second},
		{raw: "55m", want: 55 * time.Minute},
		{raw: "1d", want: 24 * time.Hour},
		{raw: "0s", want: 0},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "1h2d", wantErr: true}, // components must appear in d/h/m/s order
		{raw: "1.5h", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDuration(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDuration(%q) = %v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDuration(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseAt(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	at, err := ParseAt("18:30", now)
	if err != nil {
		t.Fatalf("ParseAt: %v", err)
	}
	want := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("ParseAt future = %v, want %v", at, want)
	}

	// A time already past today rolls to tomorrow.
	at, err = ParseAt("09:15", now)
	if err != nil {
		t.Fatalf("ParseAt: %v", err)
	}
	want = time.Date(2026, 8, 31, 9, 15, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("ParseAt past = %v, want %v", at, want)
	}

	// The exact current minute counts as past.
	at, err = ParseAt("12:00", now)
	if err != nil {
		t.Fatalf("ParseAt: %v", err)
	}
	want = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("ParseAt now = %v, want %v", at, want)
	}
}

func TestParseHourMinute(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		hour    int
		minute  int
		wantErr bool
	}{
		{raw: "13:11", hour: 13, minute: 11},
		{raw: "0:05", hour: 0, minute: 5},
		{raw: "23:59", hour: 23, minute: 59},
		{raw: "24:00", wantErr: true},
		{raw: "12:60", wantErr: true},
		{raw: "noon", wantErr: true},
		{raw: "12:5", wantErr: true}, // minutes are two digits
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			h, m, err := ParseHourMinute(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHourMinute(%q) = %d:%d, want error", tt.raw, h, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHourMinute(%q) error: %v", tt.raw, err)
			}
			if h != tt.hour || m != tt.minute {
				t.Fatalf("ParseHourMinute(%q) = %d:%d, want %d:%d", tt.raw, h, m, tt.hour, tt.minute)
			}
		})
	}
}

func TestValidateClock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		clock   task.Clock
		wantErr bool
	}{
		{name: "once", clock: task.Once(time.Now().Add(time.Hour))},
		{name: "once zero time", clock: task.Once(time.Time{}), wantErr: true},
		{name: "period", clock: task.Period(time.Minute)},
		{name: "period zero", clock: task.Period(0), wantErr: true},
		{name: "period negative", clock: task.Period(-time.Second), wantErr: true},
		{name: "daily", clock: task.OncePerDay(8, 30)},
		{name: "daily bad hour", clock: task.OncePerDay(24, 0), wantErr: true},
		{name: "daily bad minute", clock: task.OncePerDay(8, 60), wantErr: true},
		{name: "unknown kind", clock: task.Clock{Kind: task.ClockKind(42)}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateClock(tt.clock)
			if tt.wantErr && err == nil {
				t.Fatalf("ValidateClock(%v) = nil, want error", tt.clock)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("ValidateClock(%v) error: %v", tt.clock, err)
			}
		})
	}
}
