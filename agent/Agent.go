// Package agent defines the agent interface and the registry of agent
// configurations
package agent

import (
	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"
)

// Agent is the learner/controller a task hands its observations to.
//
// Step is called exactly once per control tick with the current
// observation, the reward of the current state, and whether the
// current state ended the episode. The returned action is the command
// for the next tick; a nil return means no command. When done is true
// the returned action is discarded, and the call is the agent's only
// chance to finish learning from the episode before the next episode's
// first Step.
type Agent interface {
	Step(state mat.Vector, reward float64, done bool) mat.Vector
}

// LoggerSetter is an agent which can report its progress to a logger
type LoggerSetter interface {
	Agent
	SetLogger(*log.Logger)
}
