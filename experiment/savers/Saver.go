// Package savers implements Savers, which persist the data recorded by
// Trackers after an experiment has finished
package savers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samuelfneumann/quadrl/experiment/tracker"
)

// ErrUnknownFormat is returned when constructing a Saver for a format
// that does not exist
var ErrUnknownFormat = errors.New("unknown format")

// Formats of saved data
const (
	CSV    = "csv"
	Gob    = "gob"
	SQLite = "sqlite"
)

// Saver saves the per-episode data of Trackers
type Saver interface {
	Save(trackers ...tracker.Tracker) error
	Close() error
}

// New returns a new Saver of the given format writing into the
// directory dir. Rows written by a SQLite Saver are tagged with run.
func New(format, dir, run string) (Saver, error) {
	switch format {
	case CSV:
		return NewCSV(dir)
	case Gob:
		return NewGob(dir)
	case SQLite:
		return NewSQLite(dir, run)
	}
	return nil, fmt.Errorf("new: %w %q", ErrUnknownFormat, format)
}

// Formats returns the formats that data can be saved in, in sorted
// order
func Formats() []string {
	f := []string{CSV, Gob, SQLite}
	sort.Strings(f)
	return f
}
