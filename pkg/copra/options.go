package copra

import (
	"time"
)

// Default option values
const (
	DefaultRepeat        = 1
	DefaultTolerance     = 0.05
	DefaultMaxMembership = MaxLabels
	DefaultMaxIterations = 20
)

// Options configures a propagation run
type Options struct {
	// Repeat is the number of full runs the caller performs, keeping the
	// best result. The engine itself performs one run per call.
	Repeat int

	// Tolerance stops iteration once the fraction of vertices whose
	// dominant community changed in a pass drops to this value or below
	Tolerance float64

	// MaxMembership caps the number of community memberships per vertex,
	// at most MaxLabels
	MaxMembership int

	// MaxIterations caps the passes of a run. Reaching it without meeting
	// the tolerance is observable on the result, not an error.
	MaxIterations int

	// Threshold is the belonging coefficient threshold fraction B: a
	// community is retained when its accumulated weight reaches
	// B * vtot[u]
	Threshold float64

	// Strict disables the deterministic tie-break in the scan ordering
	Strict bool

	// Self includes self-loops when scanning
	Self bool
}

// DefaultOptions returns the conventional configuration
func DefaultOptions() Options {
	return Options{
		Repeat:        DefaultRepeat,
		Tolerance:     DefaultTolerance,
		MaxMembership: DefaultMaxMembership,
		MaxIterations: DefaultMaxIterations,
	}
}

// Result is the outcome of one run
type Result struct {
	// Membership is the dominant community of every vertex
	Membership []uint32

	// Iterations actually performed. Equal to MaxIterations when the run
	// stopped without meeting the tolerance.
	Iterations int

	// Time spent processing
	Time time.Duration
}
