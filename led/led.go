package led

import (
	"time"

	"github.com/gr-butler/issbeacon/clock"
	"github.com/gr-butler/issbeacon/proximity"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// LED wraps a single active-high GPIO output. It is owned by the lamp panel
// and must only be driven from the scheduler loop.
type LED struct {
	Name    string
	on      bool
	gpioPin gpio.PinIO
}

// ByName looks up a pin in the host registry and wraps it. A missing pin is
// logged but not fatal; the LED then drives nothing.
func ByName(name string, gpioPin string) *LED {
	logger.Infof("Creating new LED on pin [%v] called [%v]", gpioPin, name)
	l := &LED{Name: name}
	l.gpioPin = gpioreg.ByName(gpioPin)
	if l.gpioPin == nil {
		logger.Errorf("Failed to find %v pin", gpioPin)
		return l
	}
	l.selfTest()
	return l
}

// New wraps an already-resolved pin. Used by tests with gpiotest pins.
func New(name string, pin gpio.PinIO) *LED {
	return &LED{Name: name, gpioPin: pin}
}

// flicker to show it's working
func (l *LED) selfTest() {
	for i := 0; i < 3; i++ {
		_ = l.gpioPin.Out(gpio.High)
		time.Sleep(time.Millisecond * 100)
		_ = l.gpioPin.Out(gpio.Low)
		time.Sleep(time.Millisecond * 100)
	}
}

func (l *LED) Set(on bool) {
	l.on = on
	if l.gpioPin != nil {
		_ = l.gpioPin.Out(gpio.Level(on))
	}
}

func (l *LED) IsOn() bool {
	return l.on
}

// Panel drives the three proximity lamps. It owns the blink phase; Tick is
// idempotent for a fixed now and never blocks.
type Panel struct {
	Red, Green, Blue *LED

	fastMs   uint32
	mediumMs uint32

	phase      bool
	lastToggle uint32
}

func NewPanel(red, green, blue *LED, blinkFastMs, blinkMediumMs uint32) *Panel {
	return &Panel{
		Red:      red,
		Green:    green,
		Blue:     blue,
		fastMs:   blinkFastMs,
		mediumMs: blinkMediumMs,
	}
}

// Tick drives the lamps for the given mode. Non-blinking outputs are forced
// every call; the blink phase advances only when its half-period elapsed.
// Phase is deliberately not reset on mode changes, only the cadence matters.
func (p *Panel) Tick(nowMs uint32, mode proximity.Mode) {
	switch mode {
	case proximity.Far:
		p.Red.Set(true)
		p.Green.Set(false)
		p.Blue.Set(false)
	case proximity.Approaching:
		p.Red.Set(false)
		p.Green.Set(false)
		p.advance(nowMs, p.mediumMs)
		p.Blue.Set(p.phase)
	case proximity.Near:
		p.Red.Set(false)
		p.Blue.Set(false)
		p.advance(nowMs, p.fastMs)
		p.Green.Set(p.phase)
	default: // proximity.Off
		p.Red.Set(false)
		p.Green.Set(false)
		p.Blue.Set(false)
	}
}

func (p *Panel) advance(nowMs uint32, periodMs uint32) {
	if clock.Elapsed(nowMs, p.lastToggle) >= periodMs {
		p.lastToggle = nowMs
		p.phase = !p.phase
	}
}
