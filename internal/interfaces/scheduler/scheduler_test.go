package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{"06:00", ScheduleTime{Hour: 6, Minute: 0}, false},
		{"23:59", ScheduleTime{Hour: 23, Minute: 59}, false},
		{"0:5", ScheduleTime{Hour: 0, Minute: 5}, false},
		{"24:00", ScheduleTime{}, true},
		{"12:60", ScheduleTime{}, true},
		{"noon", ScheduleTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScheduleTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScheduleTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseScheduleTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScheduleTime_String(t *testing.T) {
	if got := (ScheduleTime{Hour: 6, Minute: 5}).String(); got != "06:05" {
		t.Errorf("String() = %q, want 06:05", got)
	}
}

func noJobs(ctx context.Context) ([]Job, error) { return nil, nil }

func TestNewScheduler_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"No times", Config{JobProvider: noJobs}},
		{"Bad time", Config{ScheduleTimes: []string{"25:00"}, JobProvider: noJobs}},
		{"No provider", Config{ScheduleTimes: []string{"06:00"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScheduler(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestShouldRun_FiresOncePerMinute(t *testing.T) {
	s, err := NewScheduler(Config{ScheduleTimes: []string{"06:00", "18:30"}, WorkerCount: 1, QueueSize: 1, JobProvider: noJobs})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	at := func(h, m, sec int) time.Time { return time.Date(2024, 3, 10, h, m, sec, 0, time.UTC) }

	if s.shouldRun(at(5, 59, 0)) {
		t.Error("fired before schedule")
	}
	if !s.shouldRun(at(6, 0, 1)) {
		t.Error("did not fire at 06:00")
	}
	if s.shouldRun(at(6, 0, 59)) {
		t.Error("fired twice in the same minute")
	}
	if !s.shouldRun(at(18, 30, 0)) {
		t.Error("did not fire at 18:30")
	}
	if !s.shouldRun(time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC)) {
		t.Error("did not fire the next day")
	}
}

func TestNextRun(t *testing.T) {
	s, err := NewScheduler(Config{ScheduleTimes: []string{"18:30", "06:00"}, WorkerCount: 1, QueueSize: 1, JobProvider: noJobs})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"Before first", time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)},
		{"Between", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)},
		{"After last", time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC)},
		{"Exactly on time", time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.now = func() time.Time { return tt.now }
			if got := s.NextRun(); !got.Equal(tt.want) {
				t.Errorf("NextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStart_RunOnStartupRunsProvidedJobs(t *testing.T) {
	ran := make(chan string, 2)
	provider := func(ctx context.Context) ([]Job, error) {
		return []Job{
			&funcJob{desc: "first", fn: func(ctx context.Context) error { ran <- "first"; return nil }},
			&funcJob{desc: "second", fn: func(ctx context.Context) error { ran <- "second"; return nil }},
		}, nil
	}

	s, err := NewScheduler(Config{ScheduleTimes: []string{"06:00"}, WorkerCount: 1, QueueSize: 4, RunOnStartup: true, JobProvider: provider})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	s.Start()

	for _, want := range []string{"first", "second"} {
		select {
		case got := <-ran:
			if got != want {
				t.Errorf("ran %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	s.Shutdown(time.Second)
}
