package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	appLog "ttcal/internal/log"
)

// IndexFilename is the listing file written into every directory of the
// registry files tree so the tree stays browsable when served statically.
const IndexFilename = "index.json"

// DirIndex is the listing for one registry directory.
type DirIndex struct {
	Generated   time.Time `json:"generated"`
	Directories []string  `json:"directories"`
	Files       []string  `json:"files"`
}

// BuildIndex walks the registry files tree rooted at root and (re)writes an
// index.json in every directory, listing child directories and timetable
// documents. Existing index files and hidden entries are excluded from the
// listings. Returns the number of index files written.
func BuildIndex(root string) (int, error) {
	written := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := writeDirIndex(path); err != nil {
			return err
		}
		written++
		return nil
	})
	if err != nil {
		return written, err
	}
	appLog.Info("registry index rebuilt", "root", root, "index_files", written)
	return written, nil
}

func writeDirIndex(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	idx := DirIndex{
		Generated:   time.Now().UTC(),
		Directories: []string{},
		Files:       []string{},
	}
	for _, e := range entries {
		name := e.Name()
		if name == IndexFilename || strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			idx.Directories = append(idx.Directories, name)
		} else if strings.HasSuffix(name, ".json") {
			idx.Files = append(idx.Files, name)
		}
	}
	sort.Strings(idx.Directories)
	sort.Strings(idx.Files)

	data, err := json.MarshalIndent(&idx, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, IndexFilename))
}
