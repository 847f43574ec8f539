package led

import (
	"testing"

	"github.com/gr-butler/issbeacon/proximity"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func testPanel(fastMs, mediumMs uint32) (*Panel, *gpiotest.Pin, *gpiotest.Pin, *gpiotest.Pin) {
	r := &gpiotest.Pin{N: "red"}
	g := &gpiotest.Pin{N: "green"}
	b := &gpiotest.Pin{N: "blue"}
	p := NewPanel(New("red", r), New("green", g), New("blue", b), fastMs, mediumMs)
	return p, r, g, b
}

func TestPanelOffAllLow(t *testing.T) {
	p, r, g, b := testPanel(200, 500)
	p.Tick(1234, proximity.Off)
	assert.Equal(t, gpio.Low, r.L)
	assert.Equal(t, gpio.Low, g.L)
	assert.Equal(t, gpio.Low, b.L)
}

func TestPanelFarSteadyRed(t *testing.T) {
	p, r, g, b := testPanel(200, 500)
	for now := uint32(0); now < 5000; now += 10 {
		p.Tick(now, proximity.Far)
		assert.Equal(t, gpio.High, r.L)
		assert.Equal(t, gpio.Low, g.L)
		assert.Equal(t, gpio.Low, b.L)
	}
}

func TestPanelTickIdempotentAtFixedNow(t *testing.T) {
	p, _, g, _ := testPanel(200, 500)
	p.Tick(1000, proximity.Near)
	state := g.L
	for i := 0; i < 10; i++ {
		p.Tick(1000, proximity.Near)
		assert.Equal(t, state, g.L)
	}
}

func TestPanelModeChangeForcesSteadyOutputs(t *testing.T) {
	p, r, g, b := testPanel(200, 500)
	// reach a green-on phase first
	p.Tick(1000, proximity.Near)
	assert.Equal(t, gpio.High, g.L)
	// switching away must drop green on the very next tick
	p.Tick(1001, proximity.Far)
	assert.Equal(t, gpio.High, r.L)
	assert.Equal(t, gpio.Low, g.L)
	assert.Equal(t, gpio.Low, b.L)
}

// countToggles ticks the panel every stepMs over windowMs and counts level
// transitions of the given pin.
func countToggles(p *Panel, pin *gpiotest.Pin, mode proximity.Mode, windowMs, stepMs uint32) int {
	toggles := 0
	last := pin.L
	for now := uint32(0); now <= windowMs; now += stepMs {
		p.Tick(now, mode)
		if pin.L != last {
			toggles++
			last = pin.L
		}
	}
	return toggles
}

func TestPanelBlinkCadenceApproaching(t *testing.T) {
	const period = uint32(500)
	const window = period * 100
	p, _, _, b := testPanel(200, period)
	toggles := countToggles(p, b, proximity.Approaching, window, 10)
	assert.InDelta(t, int(window/period), toggles, 1)
}

func TestPanelBlinkCadenceNear(t *testing.T) {
	const period = uint32(200)
	const window = period * 100
	p, _, g, _ := testPanel(period, 500)
	toggles := countToggles(p, g, proximity.Near, window, 10)
	assert.InDelta(t, int(window/period), toggles, 1)
}

func TestPropertyLampExclusivity(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	props := gopter.NewProperties(params)

	modeGen := gen.OneConstOf(proximity.Off, proximity.Near, proximity.Approaching, proximity.Far)

	props.Property("at most the mode's own lamp is ever high", prop.ForAll(
		func(modes []proximity.Mode, start uint32) bool {
			p, r, g, b := testPanel(200, 500)
			now := start
			for _, m := range modes {
				p.Tick(now, m)
				now += 17 // deliberately not a divisor of either period
				switch m {
				case proximity.Off:
					if r.L == gpio.High || g.L == gpio.High || b.L == gpio.High {
						return false
					}
				case proximity.Far:
					if r.L == gpio.Low || g.L == gpio.High || b.L == gpio.High {
						return false
					}
				case proximity.Approaching:
					if r.L == gpio.High || g.L == gpio.High {
						return false
					}
				case proximity.Near:
					if r.L == gpio.High || b.L == gpio.High {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(modeGen),
		gen.UInt32(),
	))

	props.TestingRun(t)
}

func TestLEDSetTracksState(t *testing.T) {
	pin := &gpiotest.Pin{N: "x"}
	l := New("x", pin)
	assert.False(t, l.IsOn())
	l.Set(true)
	assert.True(t, l.IsOn())
	assert.Equal(t, gpio.High, pin.L)
	l.Set(false)
	assert.False(t, l.IsOn())
	assert.Equal(t, gpio.Low, pin.L)
}
