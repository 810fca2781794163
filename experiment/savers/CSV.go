package savers

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/samuelfneumann/quadrl/experiment/tracker"
)

// CSVSaver saves the data of each Tracker to the file <name>.csv with
// the header "episode,value"
type CSVSaver struct {
	dir string
}

// NewCSV returns a new CSVSaver writing into dir, creating dir if it
// does not exist
func NewCSV(dir string) (*CSVSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newCSV: %w", err)
	}
	return &CSVSaver{dir: dir}, nil
}

// Save writes the data of each Tracker to its own file
func (c *CSVSaver) Save(trackers ...tracker.Tracker) error {
	for _, t := range trackers {
		if err := c.save(t); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

func (c *CSVSaver) save(t tracker.Tracker) error {
	file, err := os.Create(c.Filename(t.Name()))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"episode", "value"}); err != nil {
		return err
	}
	for i, v := range t.Data() {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

// Filename returns the file that data of the named metric is saved to
func (c *CSVSaver) Filename(metric string) string {
	return filepath.Join(c.dir, metric+".csv")
}

// Close is a no-op, each Save closes the files it writes
func (c *CSVSaver) Close() error {
	return nil
}
