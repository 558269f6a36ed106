// Package csvio decodes and validates sensor reading CSVs row by row.
// The reader consumes its input sequentially and never buffers more
// than one record, so arbitrarily large objects can be processed with
// constant memory.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ntentasd/aggregator-api/pkg/types"
)

// Row-level rejection reasons. The vocabulary is fixed; callers match
// on these strings.
const (
	ReasonMissingSensorID  = "missing sensor_id"
	ReasonMissingTimestamp = "missing timestamp"
	ReasonInvalidTimestamp = "invalid timestamp"
	ReasonMissingValue     = "missing value"
	ReasonInvalidValue     = "invalid numeric value"
)

var ErrMissingHeader = errors.New("CSV file is missing a header row.")

type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("CSV missing required columns: %s", strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	_, ok := target.(*MissingColumnsError)
	return ok
}

var requiredColumns = []string{"sensor_id", "timestamp", "value"}

// Row is the tagged per-row result: exactly one of Reading and Err is
// set.
type Row struct {
	Reading *types.SensorReading
	Err     *types.ProcessingError
}

// Reader streams validated rows from a CSV document.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	rowNum  uint
}

// NewReader decodes and validates the header row. It fails with
// ErrMissingHeader on empty input and with MissingColumnsError when any
// of sensor_id, timestamp, value (case-insensitive, trimmed) is absent.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrMissingHeader
		}
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if _, seen := columns[normalized]; !seen {
			columns[normalized] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingColumnsError{Columns: missing}
	}

	return &Reader{
		csv:     cr,
		columns: columns,
		rowNum:  1,
	}, nil
}

// Next returns the next data row. It reports io.EOF when the input is
// exhausted; any other error is a stream failure, not a row rejection.
func (r *Reader) Next() (Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		return Row{}, err
	}
	r.rowNum++

	return r.parseRow(record), nil
}

// parseRow applies the checks in fixed order and stops at the first
// failure; a row passing every check yields a reading.
func (r *Reader) parseRow(record []string) Row {
	reject := func(reason string) Row {
		return Row{Err: &types.ProcessingError{RowNumber: r.rowNum, Reason: reason}}
	}

	sensorID := r.field(record, "sensor_id")
	if sensorID == "" {
		return reject(ReasonMissingSensorID)
	}

	rawTimestamp := r.field(record, "timestamp")
	if rawTimestamp == "" {
		return reject(ReasonMissingTimestamp)
	}
	timestamp, err := parseTimestamp(rawTimestamp)
	if err != nil {
		return reject(ReasonInvalidTimestamp)
	}

	rawValue := r.field(record, "value")
	if rawValue == "" {
		return reject(ReasonMissingValue)
	}
	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return reject(ReasonInvalidValue)
	}

	return Row{Reading: &types.SensorReading{
		SensorID:  sensorID,
		Timestamp: timestamp,
		Value:     value,
	}}
}

func (r *Reader) field(record []string, column string) string {
	idx := r.columns[column]
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// timestampLayouts covers ISO-8601 date-times. Layouts without an
// offset are interpreted as UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
