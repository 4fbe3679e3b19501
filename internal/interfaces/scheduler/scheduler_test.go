package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{"00:05", ScheduleTime{Hour: 0, Minute: 5}, false},
		{"23:59", ScheduleTime{Hour: 23, Minute: 59}, false},
		{"7:30", ScheduleTime{Hour: 7, Minute: 30}, false},
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

func noJobs(ctx context.Context) ([]Job, error) { return nil, nil }

func TestNewScheduler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"no provider", Config{ScheduleTimes: []string{"00:05"}}},
		{"no times", Config{JobProvider: noJobs}},
		{"bad time", Config{ScheduleTimes: []string{"25:00"}, JobProvider: noJobs}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScheduler(tt.config); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestScheduler_ShouldRunOncePerMinute(t *testing.T) {
	s, err := NewScheduler(Config{ScheduleTimes: []string{"00:05"}, JobProvider: noJobs})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	at := time.Date(2024, 5, 10, 0, 5, 3, 0, time.UTC)

	if !s.shouldRun(at) {
		t.Error("expected run at 00:05")
	}
	if s.shouldRun(at.Add(30 * time.Second)) {
		t.Error("expected no second run within the same minute")
	}
	if s.shouldRun(at.Add(time.Minute)) {
		t.Error("expected no run at 00:06")
	}
	if !s.shouldRun(at.AddDate(0, 0, 1)) {
		t.Error("expected run again the next day")
	}
}

func TestScheduler_ShouldRunInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	s, err := NewScheduler(Config{ScheduleTimes: []string{"00:05"}, Location: loc, JobProvider: noJobs})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	// 00:05 in Sao Paulo (UTC-3) is 03:05 UTC.
	if s.shouldRun(time.Date(2024, 5, 10, 0, 5, 0, 0, time.UTC)) {
		t.Error("did not expect a run at 00:05 UTC")
	}
	if !s.shouldRun(time.Date(2024, 5, 10, 3, 5, 0, 0, time.UTC)) {
		t.Error("expected a run at 03:05 UTC")
	}
}

func TestScheduler_NextRun(t *testing.T) {
	s, err := NewScheduler(Config{ScheduleTimes: []string{"12:00", "00:05"}, JobProvider: noJobs})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before first", time.Date(2024, 5, 10, 0, 1, 0, 0, time.UTC), time.Date(2024, 5, 10, 0, 5, 0, 0, time.UTC)},
		{"between", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)},
		{"after last", time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC), time.Date(2024, 5, 11, 0, 5, 0, 0, time.UTC)},
		{"exactly on time", time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), time.Date(2024, 5, 11, 0, 5, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.NextRun(tt.now); !got.Equal(tt.want) {
				t.Errorf("NextRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

type mockSweeper struct {
	calls atomic.Int32
	err   error
	done  chan struct{}
}

func (m *mockSweeper) Sweep(ctx context.Context) error {
	m.calls.Add(1)
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.err
}

func TestSweepJob_Execute(t *testing.T) {
	sweeper := &mockSweeper{}
	job := NewSweepJob(sweeper)

	if err := job.Execute(context.Background()); err != nil {
		t.Errorf("Execute() unexpected error: %v", err)
	}
	if sweeper.calls.Load() != 1 {
		t.Errorf("expected 1 sweep, got %d", sweeper.calls.Load())
	}

	boom := errors.New("database is locked")
	failing := NewSweepJob(&mockSweeper{err: boom})
	if err := failing.Execute(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Execute() error = %v, want wrapped %v", err, boom)
	}
}

func TestScheduler_RunOnStartupSweeps(t *testing.T) {
	sweeper := &mockSweeper{done: make(chan struct{}, 1)}

	s, err := NewScheduler(Config{
		ScheduleTimes: []string{"00:05"},
		WorkerCount:   1,
		QueueSize:     1,
		RunOnStartup:  true,
		JobProvider:   SweepJobProvider(sweeper),
	})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	s.Start()
	defer s.Shutdown(time.Second)

	select {
	case <-sweeper.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not run on startup")
	}
}

func TestScheduler_TriggerNow(t *testing.T) {
	sweeper := &mockSweeper{done: make(chan struct{}, 2)}

	s, err := NewScheduler(Config{
		ScheduleTimes: []string{"00:05"},
		WorkerCount:   1,
		QueueSize:     2,
		JobProvider:   SweepJobProvider(sweeper),
	})
	if err != nil {
		t.Fatalf("NewScheduler() failed: %v", err)
	}

	s.Start()

	for i := 0; i < 2; i++ {
		s.TriggerNow()
		select {
		case <-sweeper.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("trigger %d did not sweep", i+1)
		}
	}

	s.Shutdown(time.Second)
	s.TriggerNow()

	if got := sweeper.calls.Load(); got != 2 {
		t.Errorf("expected 2 sweeps, got %d (trigger after shutdown must not run)", got)
	}
}
