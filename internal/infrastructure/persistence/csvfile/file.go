// Package csvfile implements the account store and prediction log on top of
// plain CSV files, the on-disk format shared with the offline tooling.
package csvfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/turtacn/oralrisk/pkg/errors"
)

// readAll returns every row of path, header included.
// A missing file yields (nil, nil) so callers can treat it as empty.
func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Storage("open "+filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Storage("read "+filepath.Base(path), err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// appendRows appends rows to path, creating it when missing. header is written first when
// non-nil; callers pass it only when the file holds no header row yet. A last line without
// its newline is terminated before the new rows so they never merge into it.
func appendRows(path string, header []string, rows ...[]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Storage("create directory", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Storage("open "+filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Storage("stat "+filepath.Base(path), err)
	}
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return errors.Storage("read "+filepath.Base(path), err)
		}
		if last[0] != '\n' {
			if _, err := f.Write([]byte("\n")); err != nil {
				return errors.Storage("terminate last line", err)
			}
		}
	}

	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			return errors.Storage("write header", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return errors.Storage("append "+filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		return errors.Storage("sync "+filepath.Base(path), err)
	}
	return nil
}

// rewrite replaces path atomically with header and rows.
func rewrite(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Storage("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return errors.Storage("write header", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return errors.Storage("write rows", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Storage("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Storage("close temp file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Storage("replace "+filepath.Base(path), err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
