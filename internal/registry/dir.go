package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ttcal/internal/model"
)

// DirSource reads timetable documents from a local registry files tree,
// laid out as <root>/<year>/<section>/<semester>.json.
type DirSource struct {
	root string
}

// NewDirSource creates a Source over a local registry directory.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Fetch reads and decodes one document. A missing file is ErrNotFound.
func (s *DirSource) Fetch(_ context.Context, ref Ref) (*model.Document, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(ref.Path())))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, err
	}
	return model.ParseDocument(data)
}
