package link

import (
	"errors"
	"math"
	"testing"

	"github.com/gr-butler/issbeacon/clock"
	"github.com/stretchr/testify/assert"
)

// fakeRadio comes up a fixed number of Up polls after Join is called.
type fakeRadio struct {
	up        bool
	upAfter   int
	joined    int
	polls     int
	joinErr   error
	joinFails bool
}

func (r *fakeRadio) Up() bool {
	if !r.up && r.joined > 0 {
		r.polls++
		if r.polls > r.upAfter {
			r.up = true
		}
	}
	return r.up
}

func (r *fakeRadio) Join() error {
	if r.joinFails {
		return r.joinErr
	}
	r.joined++
	return nil
}

func TestEnsureReturnsImmediatelyWhenUp(t *testing.T) {
	clk := clock.NewFake(0)
	r := &fakeRadio{up: true}
	s := NewSupervisor(r, clk)

	assert.True(t, s.Ensure(clk.Millis()))
	assert.Equal(t, 0, r.joined)
	assert.Equal(t, uint32(0), clk.Millis()) // no sleeping happened
}

func TestEnsureReconnects(t *testing.T) {
	clk := clock.NewFake(0)
	r := &fakeRadio{upAfter: 3}
	s := NewSupervisor(r, clk)

	assert.True(t, s.Ensure(clk.Millis()))
	assert.Equal(t, 1, r.joined)
	// three failed polls at 500ms each before the link came up
	assert.Equal(t, uint32(1500), clk.Millis())
}

func TestEnsureTimesOutAfterTenSeconds(t *testing.T) {
	clk := clock.NewFake(0)
	r := &fakeRadio{upAfter: math.MaxInt32}
	s := NewSupervisor(r, clk)

	assert.False(t, s.Ensure(clk.Millis()))
	assert.GreaterOrEqual(t, clk.Millis(), uint32(10000))
	assert.Less(t, clk.Millis(), uint32(11000))
}

func TestEnsureJoinFailure(t *testing.T) {
	clk := clock.NewFake(0)
	r := &fakeRadio{joinFails: true, joinErr: errors.New("wpa_cli not found")}
	s := NewSupervisor(r, clk)

	assert.False(t, s.Ensure(clk.Millis()))
	assert.Equal(t, uint32(0), clk.Millis())
}

func TestEnsureSurvivesClockWraparound(t *testing.T) {
	// the poll deadline arithmetic must not stall when the millisecond
	// counter wraps mid-reconnect
	clk := clock.NewFake(math.MaxUint32 - 1000)
	r := &fakeRadio{upAfter: math.MaxInt32}
	s := NewSupervisor(r, clk)

	assert.False(t, s.Ensure(clk.Millis()))
	// wrapped past zero and still terminated within the budget
	assert.Less(t, clk.Millis(), uint32(11000))
}
