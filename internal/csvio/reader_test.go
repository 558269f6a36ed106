package csvio

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) []Row {
	t.Helper()
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	var rows []Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestReader_ValidRows(t *testing.T) {
	rows := readAll(t, "sensor_id,timestamp,value\nsensor-1,2024-01-01T00:00:00Z,1.0\nsensor-2,2024-01-01T00:01:00+00:00,2.5\n")
	require.Len(t, rows, 2)

	first := rows[0]
	require.NotNil(t, first.Reading)
	assert.Equal(t, "sensor-1", first.Reading.SensorID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Reading.Timestamp)
	assert.Equal(t, 1.0, first.Reading.Value)

	second := rows[1]
	require.NotNil(t, second.Reading)
	assert.Equal(t, 2.5, second.Reading.Value)
	assert.Equal(t, time.UTC, second.Reading.Timestamp.Location())
}

func TestReader_MissingHeaderRow(t *testing.T) {
	_, err := NewReader(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingHeader)
	assert.Equal(t, "CSV file is missing a header row.", err.Error())
}

func TestReader_MissingRequiredColumnsSorted(t *testing.T) {
	_, err := NewReader(strings.NewReader("sensor,when,reading\n"))
	var mc *MissingColumnsError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []string{"sensor_id", "timestamp", "value"}, mc.Columns)
	assert.Equal(t, "CSV missing required columns: sensor_id, timestamp, value", mc.Error())
}

func TestReader_MissingSingleColumn(t *testing.T) {
	_, err := NewReader(strings.NewReader("sensor,timestamp,value\n"))
	var mc *MissingColumnsError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []string{"sensor_id"}, mc.Columns)
}

func TestReader_HeaderNormalization(t *testing.T) {
	rows := readAll(t, " Sensor_ID , TIMESTAMP ,Value\nsensor-1,2024-01-01T00:00:00Z,3\n")
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Reading)
	assert.Equal(t, 3.0, rows[0].Reading.Value)
}

func TestReader_ValidationOrderAndRowNumbers(t *testing.T) {
	input := "sensor_id,timestamp,value\n" +
		"sensor-a,2024-01-01T00:00:00Z,3.0\n" +
		" ,2024-01-01T01:00:00Z,1\n" +
		"sensor-b,invalid,2\n" +
		"sensor-c,2024-01-01T02:00:00Z,not-a-number\n" +
		"sensor-d,,5\n" +
		"sensor-e,2024-01-01T03:00:00Z,\n"

	rows := readAll(t, input)
	require.Len(t, rows, 6)

	require.NotNil(t, rows[0].Reading)

	expected := []struct {
		rowNumber uint
		reason    string
	}{
		{3, ReasonMissingSensorID},
		{4, ReasonInvalidTimestamp},
		{5, ReasonInvalidValue},
		{6, ReasonMissingTimestamp},
		{7, ReasonMissingValue},
	}
	for i, want := range expected {
		row := rows[i+1]
		require.NotNil(t, row.Err, "row %d should be rejected", want.rowNumber)
		assert.Equal(t, want.rowNumber, row.Err.RowNumber)
		assert.Equal(t, want.reason, row.Err.Reason)
	}
}

func TestReader_RejectsNonFiniteValues(t *testing.T) {
	rows := readAll(t, "sensor_id,timestamp,value\nsensor-1,2024-01-01T00:00:00Z,NaN\nsensor-2,2024-01-01T00:00:00Z,+Inf\n")
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.NotNil(t, row.Err)
		assert.Equal(t, ReasonInvalidValue, row.Err.Reason)
	}
}

func TestReader_SkipsUTF8BOM(t *testing.T) {
	rows := readAll(t, "\xef\xbb\xbfsensor_id,timestamp,value\nsensor-1,2024-01-01T00:00:00Z,1\n")
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].Reading)
}

func TestReader_ShortRecordTreatedAsMissingFields(t *testing.T) {
	rows := readAll(t, "sensor_id,timestamp,value\nsensor-1,2024-01-01T00:00:00Z\n")
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Err)
	assert.Equal(t, ReasonMissingValue, rows[0].Err.Reason)
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T01:00:00+00:00", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"2024-01-01T03:00:00+02:00", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"2024-01-01T00:00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01 00:00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseTimestamp(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(tc.want), "%s parsed to %s", tc.in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	for _, bad := range []string{"not-a-timestamp", "01/02/2024", "2024-13-01T00:00:00Z", ""} {
		_, err := parseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}
