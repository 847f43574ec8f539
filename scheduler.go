package main

import (
	"time"

	"github.com/gr-butler/issbeacon/clock"
	"github.com/gr-butler/issbeacon/geo"
	"github.com/gr-butler/issbeacon/proximity"

	logger "github.com/sirupsen/logrus"
)

// loopYield relinquishes the CPU between iterations. Blink half-periods are
// hundreds of milliseconds, finer timing buys nothing.
const loopYield = 10 * time.Millisecond

// schedule holds the per-task deadline counters. Deadlines re-arm from the
// iteration's now: after a long blocking reconnect the loop does not try to
// catch up on missed periods.
type schedule struct {
	lastLinkCheck uint32
	lastSample    uint32
}

// runScheduler is the cooperative control loop. Everything the device does
// happens on this single goroutine: link upkeep, position sampling,
// classification and lamp updates, interleaved on millisecond deadlines so
// no activity starves another.
func (b *beacon) runScheduler() {
	logger.Info("Scheduler started")
	for {
		b.step(b.clk.Millis())
		b.clk.Sleep(loopYield)
	}
}

// step runs one scheduler iteration at the given clock reading. Unsigned
// modular subtraction keeps every deadline working across counter wrap.
func (b *beacon) step(now uint32) {
	if clock.Elapsed(now, b.sched.lastLinkCheck) >= b.cfg.LinkCheckPeriodMs {
		b.sched.lastLinkCheck = now
		up := b.link.Ensure(now)
		if up {
			Prom_linkUp.Set(1)
		} else {
			Prom_linkUp.Set(0)
		}
	}

	if clock.Elapsed(now, b.sched.lastSample) >= b.cfg.SamplePeriodMs {
		b.sched.lastSample = now
		b.takeSample(now)
	}

	b.lock.Lock()
	mode := b.mode
	b.lock.Unlock()
	b.panel.Tick(now, mode)
}

// takeSample fetches one position and reclassifies. Any failure is logged
// and skipped; the previous mode keeps driving the lamps because a watcher
// prefers the last known signal to darkness.
func (b *beacon) takeSample(now uint32) {
	if !b.link.Up() {
		logger.Warn("No link for position sample")
		b.noteError("no network link")
		return
	}

	s, err := b.source.Sample(now)
	if err != nil {
		logger.Errorf("Position sample failed [%v]", err)
		b.noteError(err.Error())
		return
	}

	dist := geo.DistanceKm(b.cfg.HomeLat, b.cfg.HomeLon, s.Lat, s.Lon)
	mode := proximity.Classify(dist, proximity.Thresholds{
		VisibleKm:     b.cfg.VisibleRadiusKm,
		SlightlyFarKm: b.cfg.SlightlyFarRadiusKm,
	})

	logger.Infof("ISS position [%.4f, %.4f] distance [%.1f km]", s.Lat, s.Lon, dist)

	b.lock.Lock()
	if mode != b.mode {
		logger.Infof("Mode transition [%v] -> [%v]", b.mode, mode)
	}
	b.mode = mode
	b.last = s
	b.lastError = ""
	b.distances.AddItem(dist)
	_, closest, _ := b.distances.GetAverageMinMax()
	b.lock.Unlock()

	Prom_distanceKm.Set(dist)
	Prom_closestKm.Set(float64(closest))
	Prom_mode.Set(float64(mode))

	// hand off to the reporter without ever blocking the loop
	select {
	case b.sightings <- sighting{At: time.Now().UTC(), Lat: s.Lat, Lon: s.Lon, DistanceKm: dist, Mode: mode}:
	default:
	}
}

func (b *beacon) noteError(msg string) {
	Prom_sampleErrors.Inc()
	b.lock.Lock()
	b.lastError = msg
	b.lock.Unlock()
}
