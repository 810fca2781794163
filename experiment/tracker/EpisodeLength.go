package tracker

import (
	ts "github.com/samuelfneumann/quadrl/timestep"
)

// EpisodeLength tracks the lengths of episodes in an experiment,
// counted in control ticks.
//
// Note that an episode must finish for this Tracker to record its
// data.
type EpisodeLength struct {
	episodeLengths []float64
}

// NewEpisodeLength returns a new EpisodeLength Tracker
func NewEpisodeLength() *EpisodeLength {
	return &EpisodeLength{}
}

// Track caches the episode length if the timestep passed to it is the
// last timestep in the episode
func (e *EpisodeLength) Track(t ts.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number+1))
	}
}

// Name returns the name of the tracked metric
func (e *EpisodeLength) Name() string {
	return "length"
}

// Data returns the lengths of all finished episodes
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}
