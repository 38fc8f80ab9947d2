package bringup

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"envlogger-go/errcode"
	"envlogger-go/internal/hw"
	"envlogger-go/internal/platform/sim"
	"envlogger-go/internal/setups"
	"envlogger-go/internal/timer"
)

func TestRunOrderAndHello(t *testing.T) {
	var out bytes.Buffer
	b := sim.New(sim.Options{Out: &out, Timer: timer.NewVirtual(time.Unix(0, 0))})

	h, err := Run(context.Background(), b, setups.Sim, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.Serial == nil || h.Bus == nil || h.Timer == nil || h.Delay == nil {
		t.Fatalf("incomplete handles: %+v", h)
	}
	if out.String() != "hello !\n" {
		t.Fatalf("serial = %q", out.String())
	}

	want := []string{
		"clock",
		"watchdog:rtc_wdt", "watchdog:timg0_wdt", "watchdog:timg1_wdt", "watchdog:super_wdt",
		"serial", "bus", "timer",
	}
	if got := b.Events(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v\nwant     %v", got, want)
	}
	for _, w := range b.Watchdogs() {
		if w.Enabled() {
			t.Fatalf("%s still enabled", w.Name())
		}
	}
}

func TestRunTwiceFails(t *testing.T) {
	b := sim.New(sim.Options{})
	if _, err := Run(context.Background(), b, setups.Sim, nil); err != nil {
		t.Fatal(err)
	}
	_, err := Run(context.Background(), b, setups.Sim, nil)
	if errcode.Of(err) != errcode.AlreadyTaken {
		t.Fatalf("second Run = %v, want already_taken", err)
	}
}

func TestStuckWatchdogAborts(t *testing.T) {
	var out bytes.Buffer
	b := sim.New(sim.Options{Out: &out})
	b.Watchdogs()[1].Stick()

	_, err := Run(context.Background(), b, setups.Sim, nil)
	if errcode.Of(err) != errcode.WatchdogEnabled {
		t.Fatalf("Run = %v, want watchdog_enabled", err)
	}
	if !strings.Contains(err.Error(), "timg0_wdt") {
		t.Fatalf("error %q does not name the watchdog", err)
	}
	if out.Len() != 0 {
		t.Fatalf("hello written despite failed bring-up: %q", out.String())
	}
	for _, ev := range b.Events() {
		if ev == "serial" || ev == "bus" {
			t.Fatalf("bring-up continued past watchdogs: %v", b.Events())
		}
	}
}

func TestCancelledBeforeTake(t *testing.T) {
	var out bytes.Buffer
	b := sim.New(sim.Options{Out: &out})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, b, setups.Sim, nil); err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if len(b.Events()) != 0 || out.Len() != 0 {
		t.Fatalf("board touched: events=%v out=%q", b.Events(), out.String())
	}
	// The board was never taken, so a live context still succeeds.
	if _, err := Run(context.Background(), b, setups.Sim, nil); err != nil {
		t.Fatalf("Run after cancel: %v", err)
	}
}

func TestInvalidPlan(t *testing.T) {
	cases := []struct {
		name string
		edit func(*hw.Plan)
	}{
		{"zero period", func(p *hw.Plan) { p.Period = 0 }},
		{"zero rate", func(p *hw.Plan) { p.I2C.Hz = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := sim.New(sim.Options{})
			p := setups.Sim
			tc.edit(&p)
			if _, err := Run(context.Background(), b, p, nil); errcode.Of(err) != errcode.InvalidParams {
				t.Fatalf("Run = %v, want invalid_params", err)
			}
			if len(b.Events()) != 0 {
				t.Fatalf("board touched: %v", b.Events())
			}
		})
	}
}

func TestBusRateRejectedByBoard(t *testing.T) {
	b := sim.New(sim.Options{})
	p := setups.Sim
	p.I2C.Hz = 5_000_000
	_, err := Run(context.Background(), b, p, nil)
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("Run = %v, want invalid_params", err)
	}
	if got := err.Error(); got != "invalid_params: unsupported bus rate" {
		t.Fatalf("error = %q", got)
	}
}

type fakeWD struct {
	name    string
	enabled bool
	stuck   bool
}

func (w *fakeWD) Name() string { return w.name }
func (w *fakeWD) Disable() {
	if !w.stuck {
		w.enabled = false
	}
}
func (w *fakeWD) Enabled() bool { return w.enabled }

func TestDisableWatchdogsTriesAll(t *testing.T) {
	a := &fakeWD{name: "a", enabled: true, stuck: true}
	b := &fakeWD{name: "b", enabled: true}
	err := DisableWatchdogs([]hw.Watchdog{a, b})
	if errcode.Of(err) != errcode.WatchdogEnabled {
		t.Fatalf("err = %v", err)
	}
	if b.enabled {
		t.Fatal("second watchdog left enabled after the first stuck")
	}
	if err := DisableWatchdogs(nil); err != nil {
		t.Fatalf("no watchdogs: %v", err)
	}
}
