package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"FinMerge/internal/domain/failure"
)

// RawSuffix names per-ticker price files in the raw and processed directories.
const RawSuffix = "_historical_data.csv"

// CSVStore keeps every artifact as a CSV file. Writes go to a temp file in the target
// directory that is renamed into place, so a failed write never leaves a partial file.
type CSVStore struct {
	dataDir      string
	rawDir       string
	processedDir string
}

func NewCSVStore(dataDir, rawDir, processedDir string) *CSVStore {
	return &CSVStore{dataDir: dataDir, rawDir: rawDir, processedDir: processedDir}
}

func (s *CSVStore) rawPath(ticker string) string {
	return filepath.Join(s.rawDir, ticker+RawSuffix)
}

func (s *CSVStore) processedPath(ticker string) string {
	return filepath.Join(s.processedDir, ticker+RawSuffix)
}

func (s *CSVStore) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dataDir, name)
}

// writeAtomic writes header and rows to path through a temp file and rename.
func writeAtomic(path string, header []string, rows [][]string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// table is a parsed CSV file with a header lookup.
type table struct {
	path   string
	header []string
	index  map[string]int
	rows   [][]string
}

// readTable loads a whole CSV file. Header names are matched exactly unless fold is set,
// in which case they are matched case-insensitively with surrounding spaces trimmed.
func readTable(path string, fold bool) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failure.Parse("read "+path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, failure.Parsef("read "+path, "no header")
		}
		return nil, failure.Parse("read "+path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &table{path: path, header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		key := h
		if fold {
			key = strings.ToLower(strings.TrimSpace(h))
		}
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, failure.Parse("read "+path, err)
	}
	t.rows = rows
	return t, nil
}

// require returns the column positions of names, failing on the first missing one.
func (t *table) require(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, ok := t.index[n]
		if !ok {
			return nil, failure.Parsef("read "+t.path, "missing column %q", n)
		}
		out[i] = idx
	}
	return out, nil
}

// col returns the position of name or -1.
func (t *table) col(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ListTickers returns the tickers that have a raw price file, sorted.
func (s *CSVStore) ListTickers() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.rawDir, "*"+RawSuffix))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.rawDir, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(filepath.Base(m), RawSuffix))
	}
	sort.Strings(out)
	return out, nil
}
