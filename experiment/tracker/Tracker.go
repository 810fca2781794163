// Package tracker implements Trackers, which record per-episode data
// from the TimeSteps of an experiment
package tracker

import (
	ts "github.com/samuelfneumann/quadrl/timestep"
)

// Tracker keeps track of experiment data, one value per finished
// episode. The data is persisted by a savers.Saver once the experiment
// has finished.
type Tracker interface {
	Track(t ts.TimeStep)

	// Name is the name of the metric being tracked
	Name() string

	// Data returns the tracked values, one per finished episode
	Data() []float64
}
