package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
	"github.com/compita-hub/compita-metrics-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT LOADER
// ══════════════════════════════════════════════════════════════════════════════

// dateFolderPattern matches the YY-MM-DD folders the export pipeline writes.
var dateFolderPattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}$`)

// Gradebook files start with "classgradebook"; study history files start
// with either "classstudyhistory" or the older "studyhistory".
var (
	gradebookPrefixes = []string{"classgradebook"}
	studyPrefixes     = []string{"classstudyhistory", "studyhistory"}
)

// Loader reads one snapshot (gradebook plus study history) from the
// processed-exports directory tree: one sub-folder per date, the newest
// matching file inside it wins.
type Loader struct {
	baseDir string
	log     *logger.Logger
	mapper  *Mapper
}

// NewLoader creates a loader over the given processed-exports directory.
// A nil logger disables loader logging.
func NewLoader(baseDir string, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{baseDir: baseDir, log: log, mapper: NewMapper()}
}

// LatestFolder returns the lexically greatest date folder under the base
// directory. YY-MM-DD sorts chronologically, so greatest means newest.
func (l *Loader) LatestFolder() (string, error) {
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return "", shared.WrapError("ingest", "LatestFolder", shared.ErrNotFound,
			"cannot list snapshot directory", err)
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() && dateFolderPattern.MatchString(entry.Name()) {
			folders = append(folders, entry.Name())
		}
	}
	if len(folders) == 0 {
		return "", shared.ErrSourceMissing
	}

	sort.Strings(folders)
	return folders[len(folders)-1], nil
}

// LoadLatest loads the snapshot from the newest date folder.
func (l *Loader) LoadLatest() (metrics.Snapshot, string, error) {
	folder, err := l.LatestFolder()
	if err != nil {
		return metrics.Snapshot{}, "", err
	}
	snap, err := l.Load(folder)
	return snap, folder, err
}

// Load loads the snapshot from one date folder. A missing source file
// degrades to an empty dataset with a warning, mirroring the legacy
// pipeline; only an unreadable file fails the load.
func (l *Loader) Load(folder string) (metrics.Snapshot, error) {
	dir := filepath.Join(l.baseDir, folder)
	snap := metrics.Snapshot{}

	gradebookPath, ok := l.newestFile(dir, gradebookPrefixes)
	if !ok {
		l.log.Warn("no gradebook export in snapshot folder",
			logger.String("folder", folder))
	} else {
		var file GradebookFile
		if err := decodeFile(gradebookPath, &file); err != nil {
			return metrics.Snapshot{}, err
		}
		snap.Completion = l.mapper.CompletionDataset(&file)
		l.log.Debug("gradebook export loaded",
			logger.String("file", filepath.Base(gradebookPath)),
			logger.Int("students", len(snap.Completion.Students)))
	}

	studyPath, ok := l.newestFile(dir, studyPrefixes)
	if !ok {
		l.log.Warn("no study history export in snapshot folder",
			logger.String("folder", folder))
	} else {
		var file StudyHistoryFile
		if err := decodeFile(studyPath, &file); err != nil {
			return metrics.Snapshot{}, err
		}
		snap.Study = l.mapper.StudyDataset(&file)
		l.log.Debug("study history export loaded",
			logger.String("file", filepath.Base(studyPath)),
			logger.Int("students", len(snap.Study.Students)))
	}

	return snap, nil
}

// newestFile finds the most recently modified JSON file in dir whose name
// starts with one of the prefixes.
func (l *Loader) newestFile(dir string, prefixes []string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var best string
	var bestMod int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if !hasAnyPrefix(name, prefixes) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().UnixNano() > bestMod {
			best = filepath.Join(dir, name)
			bestMod = info.ModTime().UnixNano()
		}
	}

	return best, best != ""
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return shared.WrapError("ingest", "Load", shared.ErrNotFound,
			"cannot read snapshot file", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return shared.WrapError("ingest", "Decode", shared.ErrInvalidFormat,
			filepath.Base(path), err)
	}
	return nil
}
