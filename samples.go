package qrsdetect

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// ReadSamplesCSV loads one column of a headered, delimited text file as
// float64 samples. Header names are compared case-insensitively with quotes
// and surrounding spaces removed, so the PhysioNet export header
// 'sample #','MLII','V5' matches column "MLII". An empty column name selects
// the first column after the sample counter, or the only column.
func ReadSamplesCSV(r io.Reader, column string) ([]float64, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	cr := csv.NewReader(bytes.NewReader(body))
	cr.Comma = DetermineDelimiter(bytes.NewReader(body))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, pfx.Err(err)
	}

	col, err := findColumn(header, column)
	if err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]float64, 0, bytes.Count(body, []byte{'\n'}))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		if col >= len(rec) {
			return nil, pfx.Err(fmt.Errorf("line %d has %d fields, wanted field %d", line, len(rec), col+1))
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("line %d: %w", line, err))
		}
		out = append(out, v)
	}

	return out, nil
}

func cleanHeader(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `'"`))
}

func findColumn(header []string, column string) (int, error) {
	if column == "" {
		if len(header) > 1 && strings.HasPrefix(cleanHeader(header[0]), "sample") {
			return 1, nil
		}
		return 0, nil
	}

	want := cleanHeader(column)
	for i, v := range header {
		if cleanHeader(v) == want {
			return i, nil
		}
	}

	return -1, fmt.Errorf("column %q not found in header %v", column, header)
}

// WriteFloat64s dumps x as consecutive little-endian float64 values.
func WriteFloat64s(w io.Writer, x []float64) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, x); err != nil {
		return pfx.Err(err)
	}
	return pfx.Err(bw.Flush())
}

// WritePeaks writes one sample index per line.
func WritePeaks(w io.Writer, peaks []int) error {
	bw := bufio.NewWriter(w)
	for _, p := range peaks {
		if _, err := fmt.Fprintln(bw, p); err != nil {
			return pfx.Err(err)
		}
	}
	return pfx.Err(bw.Flush())
}

// ReadPeaks parses a WritePeaks listing. Blank lines are ignored.
func ReadPeaks(r io.Reader) ([]int, error) {
	var out []int

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		v, err := strconv.Atoi(text)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("line %d: %w", line, err))
		}
		out = append(out, v)
	}

	return out, pfx.Err(scanner.Err())
}
