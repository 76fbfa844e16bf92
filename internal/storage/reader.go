package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nao1215/airscrape/internal/model"
)

var (
	errMissingHeader = errors.New("missing header line")
	errRaggedRow     = errors.New("wrong number of fields")
)

// Deserialize loads the review file at path.
// Any structural problem fails the whole load with a *ParseError; a missing
// file is a *ParseError wrapping fs.ErrNotExist.
func Deserialize(path string) (model.ReviewTable, error) {
	f, err := os.Open(path) //nolint:gosec // path is derived from the configured data dir
	if err != nil {
		return model.ReviewTable{}, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	return Read(f, path)
}

// Read parses a review file from r. name is used in error messages.
// The first non-blank line is the header; blank lines are skipped; column
// names and values are trimmed of surrounding whitespace.
func Read(r io.Reader, name string) (model.ReviewTable, error) {
	br := bufio.NewReader(r)

	var (
		table  model.ReviewTable
		index  map[string]int
		lineNo int
	)

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return model.ReviewTable{}, &ParseError{Path: name, Line: lineNo + 1, Err: err}
		}
		if line == "" && errors.Is(err, io.EOF) {
			break
		}
		lineNo++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if errors.Is(err, io.EOF) {
				break
			}
			continue
		}

		fields := splitLine(line)
		if index == nil {
			table.Columns = fields
			index, err = columnIndex(fields)
			if err != nil {
				return model.ReviewTable{}, &ParseError{Path: name, Line: lineNo, Err: err}
			}
			continue
		}

		if len(fields) != len(table.Columns) {
			return model.ReviewTable{}, &ParseError{
				Path: name,
				Line: lineNo,
				Err:  fmt.Errorf("%w: got %d, want %d", errRaggedRow, len(fields), len(table.Columns)),
			}
		}
		table.Rows = append(table.Rows, model.ReviewRow{
			Airline:    fields[index[model.ColumnAirline]],
			Title:      fields[index[model.ColumnTitle]],
			Rating:     fields[index[model.ColumnRating]],
			Verified:   fields[index[model.ColumnVerified]],
			ReviewText: fields[index[model.ColumnReviewText]],
		})
	}

	if index == nil {
		return model.ReviewTable{}, &ParseError{Path: name, Err: errMissingHeader}
	}
	return table, nil
}

// columnIndex maps each required column name to its position in header.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, want := range model.Columns() {
		if _, ok := index[want]; !ok {
			return nil, fmt.Errorf("header lacks column %q", want)
		}
	}
	return index, nil
}
