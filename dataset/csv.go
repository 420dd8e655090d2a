package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVSource reads a comma-separated launch table with a header row.
type CSVSource struct {
	name string
	path string
	r    io.Reader
}

// NewCSVSource reads the file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{name: path, path: path}
}

// NewCSVReaderSource reads from r. name is used in errors and logs.
func NewCSVReaderSource(name string, r io.Reader) *CSVSource {
	return &CSVSource{name: name, r: r}
}

func (s *CSVSource) Name() string { return s.name }

func (s *CSVSource) Close() error { return nil }

// Read consumes the whole table.
func (s *CSVSource) Read(ctx context.Context) (*RawTable, error) {
	r := s.r
	if r == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, eris.Wrap(err, "csv: open file")
		}
		defer f.Close()
		r = f
	}

	rowCh, errCh := streamCSV(ctx, r)

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return tableFromRows(rows)
}

// streamCSV sends rows on the first channel until EOF. At most one error is
// sent on the second. Both channels are closed when reading stops.
func streamCSV(ctx context.Context, r io.Reader) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1 // allow variable fields
		reader.LazyQuotes = true

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if first {
				first = false
				if len(record) > 0 {
					record[0] = strings.TrimPrefix(record[0], "\ufeff")
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}
