package agent

import "github.com/samuelfneumann/quadrl/spec"

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes, acting
	// on observations from obs and producing actions in act
	CreateAgent(obs, act spec.Space, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the Type of agent the Config creates
	Type() Type
}
