package importer

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ImportCSV loads respondents from a CSV file. The first row is the header.
func (im *Importer) ImportCSV(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open %s", path)
	}
	defer f.Close()
	return im.ImportCSVReader(ctx, f)
}

// ImportCSVReader loads respondents from CSV content.
func (im *Importer) ImportCSVReader(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // panel exports pad rows unevenly

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "importer: cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "importer: read csv")
		}
		rows = append(rows, record)
	}
	return im.importRows(ctx, rows)
}
