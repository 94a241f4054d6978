package adapter

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// ReadRows parses rows of float64 from r. Input starting with '[' is read
// as a JSON array of rows; anything else is CSV. Blank CSV lines and lines
// starting with '#' are skipped.
func ReadRows(r io.Reader) ([][]float64, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if first == '[' {
		return readJSONRows(br)
	}

	cr := csv.NewReader(br)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // ragged rows are reported by the adapter

	var rows [][]float64
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("record %d field %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readJSONRows decodes a single JSON array of rows. Null elements and any
// content after the array are rejected.
func readJSONRows(r io.Reader) ([][]float64, error) {
	dec := json.NewDecoder(r)
	var raw [][]*float64
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON matrix: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON matrix: unexpected content after matrix")
	}

	var rows [][]float64
	if raw != nil {
		rows = make([][]float64, len(raw))
	}
	for i, rawRow := range raw {
		if rawRow == nil {
			return nil, fmt.Errorf("invalid JSON matrix: row %d is null", i+1)
		}
		row := make([]float64, len(rawRow))
		for j, v := range rawRow {
			if v == nil {
				return nil, fmt.Errorf("invalid JSON matrix: row %d value %d is null", i+1, j+1)
			}
			row[j] = *v
		}
		rows[i] = row
	}
	return rows, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

// WriteRows writes rows to w as CSV or JSON. Values use the shortest
// representation that round-trips.
func WriteRows(w io.Writer, rows [][]float64, format string) error {
	switch strings.ToLower(format) {
	case "json":
		if rows == nil {
			rows = [][]float64{}
		}
		return json.NewEncoder(w).Encode(rows)
	case "", "csv":
		cw := csv.NewWriter(w)
		for _, row := range rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("unknown output format %q (want csv or json)", format)
	}
}
