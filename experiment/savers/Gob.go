package savers

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/quadrl/experiment/tracker"
)

// GobSaver saves the data of each Tracker as a gob-encoded []float64
// in the file <name>.bin
type GobSaver struct {
	dir string
}

// NewGob returns a new GobSaver writing into dir, creating dir if it
// does not exist
func NewGob(dir string) (*GobSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newGob: %w", err)
	}
	return &GobSaver{dir: dir}, nil
}

// Save writes the data of each Tracker to its own file
func (g *GobSaver) Save(trackers ...tracker.Tracker) error {
	for _, t := range trackers {
		file, err := os.Create(g.Filename(t.Name()))
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}

		enc := gob.NewEncoder(file)
		if err := enc.Encode(t.Data()); err != nil {
			file.Close()
			return fmt.Errorf("save: could not encode %v data: %w",
				t.Name(), err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// Filename returns the file that data of the named metric is saved to
func (g *GobSaver) Filename(metric string) string {
	return filepath.Join(g.dir, metric+".bin")
}

// Close is a no-op, each Save closes the files it writes
func (g *GobSaver) Close() error {
	return nil
}

// LoadData loads and returns the data saved by a GobSaver
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %w", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %w", err)
	}
	return data, nil
}
