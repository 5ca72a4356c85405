package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

func (f *FileBackend) loadIndexLocked() error {
	files, err := os.ReadDir(f.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		run, err := f.readRun(filepath.Join(f.runsDir(), file.Name()))
		if err != nil {
			log.WithError(err).WithField("file", file.Name()).Warn("skipping unreadable run record")
			continue
		}
		f.index[run.ID] = run.Summary()
	}
	return nil
}

func (f *FileBackend) readRun(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}
	if run.ID == "" {
		run.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return &run, nil
}

// writeRun writes through a temp file and rename so readers never observe a
// partial document.
func (f *FileBackend) writeRun(run *RunRecord) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.runsDir(), ".run-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.runPath(run.ID))
}

func dirSize(dir string) int64 {
	var total int64
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	for _, e := range entries {
		if info, err := e.Info(); err == nil && !info.IsDir() {
			total += info.Size()
		}
	}
	return total
}
