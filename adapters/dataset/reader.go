// Package dataset loads two-column behavioral tables (stimulus, response)
// from CSV or Excel files.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"psychofit/domain/psychometric"
	"psychofit/internal/errors"
	"psychofit/ports"
)

// Reader handles reading CSV and Excel trial tables. Column 1 is the
// stimulus in degrees, column 2 the response category (1 or 2). A first row
// that fails numeric coercion is treated as a header and skipped.
type Reader struct{}

// NewReader creates a trial table reader.
func NewReader() ports.TrialReader {
	return &Reader{}
}

// Read loads the dataset at path, dispatching on file extension.
func (r *Reader) Read(ctx context.Context, path string) (psychometric.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.DatasetFormat(fmt.Sprintf("file not found: %s", path))
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		return nil, errors.DatasetFormat(fmt.Sprintf("unsupported file type: %s", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}

	return coerceTrials(rows)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse CSV file")
	}
	return rows, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	return rows, nil
}

func coerceTrials(rows [][]string) (psychometric.Dataset, error) {
	data := make(psychometric.Dataset, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, errors.DatasetFormat(fmt.Sprintf("row %d: expected 2 columns, got %d", i+1, len(row)))
		}

		stimulus, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, errors.DatasetFormat(fmt.Sprintf("row %d: bad stimulus %q", i+1, row[0]))
		}

		response, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || (response != 1 && response != 2) {
			return nil, errors.DatasetFormat(fmt.Sprintf("row %d: bad response %q (want 1 or 2)", i+1, row[1]))
		}

		data = append(data, psychometric.Trial{
			Stimulus: stimulus,
			Response: psychometric.Category(response),
		})
	}

	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid dataset")
	}
	return data.SplitHalves(), nil
}
