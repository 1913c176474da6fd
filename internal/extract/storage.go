package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

func genRunID() string {
	return "run_" + uuid.NewString()
}

func createRunDir(runsDir string) (string, string, error) {
	runID := genRunID()
	runPath := filepath.Join(runsDir, runID)
	if err := os.MkdirAll(runPath, 0755); err != nil {
		return "", "", err
	}
	return runID, runPath, nil
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

type RunIndexEntry struct {
	RunID     string `json:"run_id"`
	Address   string `json:"address"`
	Extracted int    `json:"extracted"`
	Total     int    `json:"total"`
	Timestamp int64  `json:"ts"`
}

func updateRunsIndex(runsDir string, limit int, entry RunIndexEntry) error {
	if limit <= 0 {
		return nil
	}
	indexPath := filepath.Join(runsDir, "index.json")
	var entries []RunIndexEntry
	if b, err := os.ReadFile(indexPath); err == nil {
		_ = json.Unmarshal(b, &entries)
	}
	entries = append([]RunIndexEntry{entry}, entries...)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return saveJSON(indexPath, entries)
}

type runEntry struct {
	path    string
	modTime time.Time
}

// pruneRuns keeps the maxRuns most recently modified run directories.
func pruneRuns(runsDir string, maxRuns int) error {
	if maxRuns <= 0 {
		return nil
	}
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var runs []runEntry
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "run_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, runEntry{
			path:    filepath.Join(runsDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}
	if len(runs) <= maxRuns {
		return nil
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].modTime.After(runs[j].modTime)
	})
	for i := maxRuns; i < len(runs); i++ {
		if err := os.RemoveAll(runs[i].path); err != nil {
			return err
		}
	}
	return nil
}
