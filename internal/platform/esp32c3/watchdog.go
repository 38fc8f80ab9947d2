package esp32c3

import "envlogger-go/internal/hw"

const (
	wdtUnlockKey = 0x50D83AA1
	swdUnlockKey = 0x8F1D312A

	wdtEnable  = 1 << 31
	swdDisable = 1 << 30
)

// register is the subset of volatile.Register32 the watchdogs touch.
type register interface {
	Set(value uint32)
	SetBits(value uint32)
	HasBits(value uint32) bool
}

var (
	_ hw.Watchdog = mwdt{}
	_ hw.Watchdog = superWDT{}
)

// mwdt is one of the main-system watchdogs: the RTC one or a timer group's.
type mwdt struct {
	name    string
	protect register
	config  register
}

func (w mwdt) Name() string { return w.name }

func (w mwdt) Disable() {
	w.protect.Set(wdtUnlockKey)
	w.config.Set(0)
	w.protect.Set(0)
}

func (w mwdt) Enabled() bool { return w.config.HasBits(wdtEnable) }

// superWDT is the RTC super watchdog. It has no enable bit, only a
// disable bit.
type superWDT struct {
	protect register
	conf    register
}

func (superWDT) Name() string { return "super_wdt" }

func (w superWDT) Disable() {
	w.protect.Set(swdUnlockKey)
	w.conf.SetBits(swdDisable)
	w.protect.Set(0)
}

func (w superWDT) Enabled() bool { return !w.conf.HasBits(swdDisable) }
