package acquire

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"envlogger-go/errcode"
	"envlogger-go/internal/bringup"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/timer"

	"tinygo.org/x/drivers"
)

var errStop = errors.New("test: stop")

// recorder is a shared, ordered event log.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count(ev string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == ev {
			n++
		}
	}
	return n
}

type recWriter struct {
	rec   *recorder
	lines []string
}

func (w *recWriter) Write(p []byte) (int, error) {
	w.rec.add("report")
	w.lines = append(w.lines, strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

type recTimer struct {
	rec    *recorder
	limit  int
	waits  int
	period time.Duration
}

func (t *recTimer) Start(p time.Duration) { t.rec.add("start"); t.period = p }
func (t *recTimer) Wait(ctx context.Context) error {
	if t.waits >= t.limit {
		return errStop
	}
	t.waits++
	t.rec.add("wait")
	return nil
}

type fakeSensor struct {
	rec   *recorder
	seq   []Reading
	errAt map[int]error
	n     int
}

func (s *fakeSensor) Read() (Reading, error) {
	s.rec.add("read")
	i := s.n
	s.n++
	if err := s.errAt[i]; err != nil {
		return Reading{}, err
	}
	if len(s.seq) == 0 {
		return Reading{Humidity: 45.2, Temperature: 21.7}, nil
	}
	return s.seq[i%len(s.seq)], nil
}

func constructorOf(rec *recorder, s Sensor, err error) (Constructor, *int) {
	calls := 0
	return func(drivers.I2C, hw.Delayer) (Sensor, error) {
		calls++
		rec.add("construct")
		if err != nil {
			return nil, err
		}
		return s, nil
	}, &calls
}

func TestFormatReadingExact(t *testing.T) {
	got := FormatReading(Reading{Humidity: 45.2, Temperature: 21.7})
	if want := "relative humidity=45.2%; temperature=21.7C"; got != want {
		t.Fatalf("FormatReading = %q, want %q", got, want)
	}
	got = FormatReading(Reading{Humidity: 100, Temperature: -3.25})
	if want := "relative humidity=100%; temperature=-3.25C"; got != want {
		t.Fatalf("FormatReading = %q, want %q", got, want)
	}
}

func TestConstructionFailureEntersHalt(t *testing.T) {
	rec := &recorder{}
	w := &recWriter{rec: rec}
	tm := &recTimer{rec: rec, limit: 25}
	busTimeout := &errcode.E{C: errcode.Bus, Err: errcode.Timeout}
	construct, calls := constructorOf(rec, nil, busTimeout)

	l := &Loop{
		Handles:   bringup.Handles{Serial: w, Timer: tm},
		Period:    time.Minute,
		Construct: construct,
	}
	if err := l.Run(context.Background()); err != errStop {
		t.Fatalf("Run = %v, want the timer's stop", err)
	}
	if *calls != 1 {
		t.Fatalf("construct calls = %d, want 1", *calls)
	}
	if len(w.lines) != 1 || w.lines[0] != "error: bus: timeout" {
		t.Fatalf("lines = %q", w.lines)
	}
	if rec.count("read") != 0 {
		t.Fatal("halt must not read the sensor")
	}
	if rec.count("wait") != 25 || rec.count("start") != 1 {
		t.Fatalf("events = %v", rec.events)
	}
	// Nothing after the single error report but waits.
	for _, ev := range rec.events[3:] {
		if ev != "wait" {
			t.Fatalf("unexpected %q after halt entry: %v", ev, rec.events)
		}
	}
}

func TestSteadyStateCycleOrder(t *testing.T) {
	const n = 4
	rec := &recorder{}
	w := &recWriter{rec: rec}
	tm := &recTimer{rec: rec, limit: n}
	s := &fakeSensor{rec: rec}
	construct, calls := constructorOf(rec, s, nil)

	l := &Loop{Handles: bringup.Handles{Serial: w, Timer: tm}, Period: time.Minute, Construct: construct}
	if err := l.Run(context.Background()); err != errStop {
		t.Fatalf("Run = %v", err)
	}
	if *calls != 1 {
		t.Fatalf("construct calls = %d", *calls)
	}
	if tm.period != time.Minute {
		t.Fatalf("timer armed with %v", tm.period)
	}

	want := []string{"construct", "start"}
	for i := 0; i < n; i++ {
		want = append(want, "read", "report", "wait")
	}
	want = append(want, "read", "report") // the iteration cut short by the timer
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v\nwant     %v", rec.events, want)
	}
	for _, line := range w.lines {
		if line == "error: bus: timeout" || strings.HasPrefix(line, "error:") {
			t.Fatalf("unexpected error line %q", line)
		}
		if line != "relative humidity=45.2%; temperature=21.7C" {
			t.Fatalf("line = %q", line)
		}
	}
}

func TestReadFailureReportsAndContinues(t *testing.T) {
	rec := &recorder{}
	w := &recWriter{rec: rec}
	tm := &recTimer{rec: rec, limit: 2}
	s := &fakeSensor{rec: rec, errAt: map[int]error{1: &errcode.E{C: errcode.Checksum, Op: "aht20.collect"}}}
	construct, _ := constructorOf(rec, s, nil)

	l := &Loop{Handles: bringup.Handles{Serial: w, Timer: tm}, Period: time.Minute, Construct: construct}
	if err := l.Run(context.Background()); err != errStop {
		t.Fatalf("Run = %v", err)
	}
	want := []string{
		"relative humidity=45.2%; temperature=21.7C",
		"error: checksum",
		"relative humidity=45.2%; temperature=21.7C",
	}
	if strings.Join(w.lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q", w.lines)
	}
}

func TestReadFailureStopPolicy(t *testing.T) {
	rec := &recorder{}
	w := &recWriter{rec: rec}
	tm := &recTimer{rec: rec, limit: 10}
	s := &fakeSensor{rec: rec, errAt: map[int]error{1: errcode.Timeout}}
	construct, _ := constructorOf(rec, s, nil)

	l := &Loop{Handles: bringup.Handles{Serial: w, Timer: tm}, Period: time.Minute, Construct: construct, OnReadError: Stop}
	err := l.Run(context.Background())
	if errcode.Of(err) != errcode.Timeout || !errors.Is(err, errcode.Timeout) {
		t.Fatalf("Run = %v, want timeout", err)
	}
	if len(w.lines) != 1 || rec.count("wait") != 1 {
		t.Fatalf("lines=%q events=%v", w.lines, rec.events)
	}
}

func TestReadFailureStopKeepsRendering(t *testing.T) {
	rec := &recorder{}
	s := &fakeSensor{rec: rec, errAt: map[int]error{0: &errcode.E{C: errcode.Bus, Op: "aht20.collect", Err: errcode.Timeout}}}
	construct, _ := constructorOf(rec, s, nil)
	l := &Loop{
		Handles:     bringup.Handles{Serial: &recWriter{rec: rec}, Timer: &recTimer{rec: rec, limit: 3}},
		Period:      time.Minute,
		Construct:   construct,
		OnReadError: Stop,
	}
	err := l.Run(context.Background())
	if errcode.Of(err) != errcode.Bus || err.Error() != "bus: timeout" {
		t.Fatalf("Run = %q, want bus: timeout", err)
	}
}

func TestRunOnlyOnce(t *testing.T) {
	rec := &recorder{}
	construct, calls := constructorOf(rec, &fakeSensor{rec: rec}, nil)
	l := &Loop{
		Handles:   bringup.Handles{Serial: &recWriter{rec: rec}, Timer: &recTimer{rec: rec}},
		Period:    time.Minute,
		Construct: construct,
	}
	_ = l.Run(context.Background())
	if err := l.Run(context.Background()); err != errcode.AlreadyTaken {
		t.Fatalf("second Run = %v, want already_taken", err)
	}
	if *calls != 1 {
		t.Fatalf("construct calls = %d, want 1", *calls)
	}
}

// timedWriter stamps every line with the virtual clock.
type timedWriter struct {
	clk   *timer.Virtual
	stamp []time.Time
}

func (w *timedWriter) Write(p []byte) (int, error) {
	w.stamp = append(w.stamp, w.clk.Now())
	return len(p), nil
}

func TestReportsExactlyOnePeriodApart(t *testing.T) {
	clk := timer.NewVirtual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	clk.Limit = 10
	w := &timedWriter{clk: clk}
	rec := &recorder{}
	construct, _ := constructorOf(rec, &fakeSensor{rec: rec}, nil)

	l := &Loop{Handles: bringup.Handles{Serial: w, Timer: clk}, Period: 60 * time.Second, Construct: construct}
	if err := l.Run(context.Background()); err != timer.ErrExhausted {
		t.Fatalf("Run = %v", err)
	}
	if len(w.stamp) != 11 {
		t.Fatalf("reports = %d, want 11", len(w.stamp))
	}
	for i := 1; i < len(w.stamp); i++ {
		if d := w.stamp[i].Sub(w.stamp[i-1]); d != 60*time.Second {
			t.Fatalf("report %d came %v after the previous one", i, d)
		}
	}
}

func TestHaltEndsWithContext(t *testing.T) {
	rec := &recorder{}
	construct, _ := constructorOf(rec, nil, errcode.Uncalibrated)
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		Handles:   bringup.Handles{Serial: &recWriter{rec: rec}, Timer: timer.NewCountdown()},
		Period:    time.Hour,
		Construct: construct,
	}
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("halt did not observe cancellation")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errcode.Bus }

func TestSerialFailureEscalates(t *testing.T) {
	rec := &recorder{}
	construct, _ := constructorOf(rec, &fakeSensor{rec: rec}, nil)
	l := &Loop{Handles: bringup.Handles{Serial: failWriter{}, Timer: &recTimer{rec: rec, limit: 5}}, Period: time.Minute, Construct: construct}
	if err := l.Run(context.Background()); errcode.Of(err) != errcode.Bus {
		t.Fatalf("Run = %v, want bus", err)
	}
	if rec.count("wait") != 0 {
		t.Fatal("loop kept going after the report failed")
	}
}
