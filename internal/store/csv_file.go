package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const utf8BOM = "\ufeff"

// CSVFileStore keeps each collection in its own CSV file with a header row.
//
// Layout:
//
//	data_dir/
//	  inventory.csv
//	  orders.csv
//	  deleted_orders.csv
//	  financial.csv
//
// Writes go to a temp file in the same directory which is then renamed
// over the collection file, so readers see either the old or the new
// contents.
type CSVFileStore struct {
	dir string
}

func NewCSVFileStore(dir string) (*CSVFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &CSVFileStore{dir: dir}, nil
}

// Path returns the file backing a collection.
func (s *CSVFileStore) Path(collection string) string {
	return filepath.Join(s.dir, collection+".csv")
}

func (s *CSVFileStore) Close() error { return nil }

func (s *CSVFileStore) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path(collection))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", collection, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	records := []Record{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", collection, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CSVFileStore) WriteAll(ctx context.Context, collection string, records []Record, columns []string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := checkColumns(columns); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			// The reader folds quoted CRLF to LF; store it that way so a
			// read-back rewrite is byte-identical.
			row[i] = strings.ReplaceAll(rec[col], "\r\n", "\n")
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", collection, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", collection, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.Path(collection)); err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	committed = true
	return nil
}
