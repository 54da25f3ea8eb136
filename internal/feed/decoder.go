package feed

import (
	"archive/zip"
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one raw tabular row, keyed by the header column names so the
// pipeline survives upstream column reordering.
type Record map[string]string

// Handler errors abort the stream and propagate to the caller.
type Handler func(Record) error

// ErrStop lets a handler end the stream early without reporting an error.
var ErrStop = errors.New("stop streaming")

// StreamArchive opens the zip at path and streams the records of its CSV
// entry. Archives may carry extra entries (readme, licence); only the
// first .csv entry is processed, the rest are never read.
func StreamArchive(path string, handler Handler) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if !strings.EqualFold(filepath.Ext(entry.Name), ".csv") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open archive entry %s: %w", entry.Name, err)
		}
		err = streamCSV(rc, handler)
		rc.Close()
		return err
	}
	return fmt.Errorf("archive %s has no csv entry", filepath.Base(path))
}

// StreamPlain streams records from an uncompressed CSV file.
func StreamPlain(path string, handler Handler) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close()
	return streamCSV(f, handler)
}

func streamCSV(r io.Reader, handler Handler) error {
	cr := csv.NewReader(bufio.NewReaderSize(r, 64<<10))
	// Affiliate exports are not strict RFC 4180: stray quotes and ragged
	// rows are routine.
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("feed file is empty")
		}
		return fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		if err := handler(rec); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}
