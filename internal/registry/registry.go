// Package registry provides access to stored timetable documents, either
// over HTTP from the hosted registry or from a local checkout of its files
// tree, plus the index files that make the tree browsable when served
// statically.
package registry

import (
	"context"
	"errors"
	"path"

	"ttcal/internal/model"
)

// ErrNotFound signals that no timetable document exists for a reference.
// The web layer maps it to a 404.
var ErrNotFound = errors.New("registry: timetable not found")

// Ref identifies one timetable document in the registry tree.
type Ref struct {
	Year     string
	Section  string
	Semester string
}

// Path is the document's location relative to the registry files root.
func (r Ref) Path() string {
	return path.Join(r.Year, r.Section, r.Semester+".json")
}

func (r Ref) String() string {
	return r.Year + "/" + r.Section + "/" + r.Semester
}

// Source yields timetable documents. Implementations return ErrNotFound
// (possibly wrapped) when the reference does not exist.
type Source interface {
	Fetch(ctx context.Context, ref Ref) (*model.Document, error)
}
