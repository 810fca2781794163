package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/quadrl/timestep"
)

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	episodes int
	object   Serializable // Object to save

	// filename returns the string filename of the file to save the
	// object in.
	//
	// If each serialized object should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// agent1.bin, agent2.bin, ..., agentK.bin), then use
	// FilenameEnumerator. If the filename does not matter, use
	// FileTimer:
	//
	// n := NewNEpisode(10, object, FileTimer("agent", ".bin"))
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints object at the end
// of every n-th episode.
func NewNEpisode(n int, object Serializable,
	filename func() string) Checkpointer {
	if n <= 0 {
		panic(fmt.Sprintf("newNEpisode: illegal interval %v ∉ [1, ∞)", n))
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the tracked object if t ends an episode whose count
// is a multiple of the interval
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval == 0 {
		return Save(n.filename(), n.object)
	}
	return nil
}
