// Package baseline persists the set of scenarios that passed on the last
// full run and computes regressions against it.
package baseline

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const (
	passFile = "test262-pass"
	failFile = "test262-fail"
)

// Set is a set of scenario ids.
type Set map[string]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Path returns the baseline location for engine under stateDir. The
// default engine uses the unqualified name.
func Path(stateDir, engine, defaultEngine string) string {
	return filepath.Join(stateDir, qualify(passFile, engine, defaultEngine))
}

// FailurePath returns the failure-list location for engine under stateDir.
func FailurePath(stateDir, engine, defaultEngine string) string {
	return filepath.Join(stateDir, qualify(failFile, engine, defaultEngine))
}

func qualify(base, engine, defaultEngine string) string {
	if engine == "" || engine == defaultEngine {
		return base + ".txt"
	}
	return base + "-" + engine + ".txt"
}

// Load reads a newline-delimited id list. A missing file is an empty set.
func Load(logger zerolog.Logger, path string) (Set, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug().Str("path", path).Msg("No baseline found")
		return Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline: %w", err)
	}
	defer f.Close()

	set := Set{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			set[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read baseline %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("entries", len(set)).Msg("Loaded baseline")
	return set, nil
}

// Save writes ids sorted, one per line, replacing path atomically.
func Save(path string, ids []string) error {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	var sb strings.Builder
	for _, id := range sorted {
		sb.WriteString(id)
		sb.WriteByte('\n')
	}

	if err := writeFileAtomic(path, []byte(sb.String())); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Diff applies the regression law: regressions are baseline members that
// ran this time and did not pass; new passes are passes missing from the
// baseline. Scenarios that did not run can never regress.
func Diff(base, executed, passed Set) (regressions, newPasses []string) {
	for id := range base {
		if executed.Has(id) && !passed.Has(id) {
			regressions = append(regressions, id)
		}
	}
	for id := range passed {
		if !base.Has(id) {
			newPasses = append(newPasses, id)
		}
	}
	sort.Strings(regressions)
	sort.Strings(newPasses)
	return regressions, newPasses
}

// writeFileAtomic writes to a temp file in the target directory, syncs it
// and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	return d.Sync()
}
