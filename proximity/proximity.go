package proximity

import "fmt"

// Mode is the abstract output state driving the lamps. Ordering matters:
// Near < Approaching < Far is the "distance order" used by the classifier.
type Mode int

const (
	// Off is the boot state, before the first successful sample.
	Off Mode = iota
	Near
	Approaching
	Far
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "OFF"
	case Near:
		return "NEAR"
	case Approaching:
		return "APPROACHING"
	case Far:
		return "FAR"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Thresholds holds the two classification radii in km.
// Invariant: 0 < VisibleKm <= SlightlyFarKm.
type Thresholds struct {
	VisibleKm     float64
	SlightlyFarKm float64
}

// Classify maps a distance in km to a mode. Both boundaries are inclusive on
// the lower side: a distance exactly equal to VisibleKm is Near.
func Classify(distanceKm float64, t Thresholds) Mode {
	switch {
	case distanceKm <= t.VisibleKm:
		return Near
	case distanceKm <= t.SlightlyFarKm:
		return Approaching
	default:
		return Far
	}
}
