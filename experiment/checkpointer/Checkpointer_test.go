package checkpointer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ts "github.com/samuelfneumann/quadrl/timestep"
)

// counter is a Serializable holding a single value
type counter struct {
	value byte
}

func (c *counter) GobEncode() ([]byte, error) {
	return []byte{c.value}, nil
}

func (c *counter) GobDecode(b []byte) error {
	c.value = b[0]
	return nil
}

func last() ts.TimeStep {
	step := ts.New(ts.Mid, 0, nil, 3, 0.1)
	step.SetEnd(ts.Timeout)
	return step
}

func TestNEpisode(t *testing.T) {
	dir := t.TempDir()
	obj := &counter{value: 7}
	c := NewNEpisode(2, obj,
		FilenameEnumerator(0, filepath.Join(dir, "agent"), ".bin"))

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Checkpoint(ts.New(ts.Mid, 0, nil, 1, 0)))
		require.NoError(t, c.Checkpoint(last()))
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "agent1.bin", files[0].Name())
	assert.Equal(t, "agent2.bin", files[1].Name())

	loaded := &counter{}
	require.NoError(t, Load(filepath.Join(dir, "agent2.bin"), loaded))
	assert.Equal(t, byte(7), loaded.value)
}

func TestFileTimer(t *testing.T) {
	name := FileTimer("agent", ".bin")()
	assert.True(t, strings.HasPrefix(name, "agent-"))
	assert.True(t, strings.HasSuffix(name, ".bin"))
}

func TestBadInterval(t *testing.T) {
	assert.Panics(t, func() {
		NewNEpisode(0, &counter{}, FileTimer("agent", ".bin"))
	})
}
