package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Report is what the status surface exposes for a job.
type Report struct {
	Status
	Clips []string `json:"highlights"`
}

// ReadStatus loads the record of job id from dir. A job that has not
// published yet reads as waiting at 0%. Clips lists the highlight files
// currently present in dir.
func ReadStatus(dir, id string) (Report, error) {
	clips, err := ListClips(dir)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Clips: clips}

	b, err := os.ReadFile(StatusPath(dir, id))
	if errors.Is(err, fs.ErrNotExist) {
		rep.Status = Status{JobID: id, Step: "Waiting for processing", Progress: 0}
		return rep, nil
	}
	if err != nil {
		return Report{}, fmt.Errorf("read status: %w", err)
	}
	if err := json.Unmarshal(b, &rep.Status); err != nil {
		return Report{}, fmt.Errorf("decode status %s: %w", StatusPath(dir, id), err)
	}
	return rep, nil
}

// ListClips returns the sorted base names of *_highlight* files in dir.
func ListClips(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_highlight*"))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			out = append(out, filepath.Base(m))
		}
	}
	sort.Strings(out)
	return out, nil
}
