package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ntentasd/aggregator-api/pkg/types"
)

// RenderResult writes a human-readable view of a record.
func RenderResult(w io.Writer, record *types.ProcessingResult) {
	fmt.Fprintln(w, "Processing Result")
	fmt.Fprintf(w, "file_id: %s\n", record.FileID)
	fmt.Fprintf(w, "status: %s\n", record.Status)
	fmt.Fprintf(w, "uploaded_at: %s\n", record.UploadedAt.Format(time.RFC3339))
	if record.ProcessedAt != nil {
		fmt.Fprintf(w, "processed_at: %s\n", record.ProcessedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "processed_at: -")
	}
	if record.ProcessingMS != nil {
		fmt.Fprintf(w, "processing_ms: %d\n", *record.ProcessingMS)
	} else {
		fmt.Fprintln(w, "processing_ms: -")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Aggregates")
	if agg := record.Aggregates; agg != nil {
		fmt.Fprintf(w, "row_count: %d\n", agg.RowCount)
		renderOptional(w, "min_value", agg.MinValue)
		renderOptional(w, "max_value", agg.MaxValue)
		renderOptional(w, "mean_value", agg.MeanValue)
		if len(agg.PerSensorCount) > 0 {
			fmt.Fprintln(w, "per_sensor_count:")
			sensors := make([]string, 0, len(agg.PerSensorCount))
			for sensor := range agg.PerSensorCount {
				sensors = append(sensors, sensor)
			}
			sort.Strings(sensors)
			for _, sensor := range sensors {
				fmt.Fprintf(w, "  - %s: %d\n", sensor, agg.PerSensorCount[sensor])
			}
		}
	} else {
		fmt.Fprintln(w, "No aggregates available.")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Errors")
	if len(record.Errors) > 0 {
		for _, e := range record.Errors {
			fmt.Fprintf(w, "  - row %d: %s\n", e.RowNumber, e.Reason)
		}
	} else {
		fmt.Fprintln(w, "No errors recorded.")
	}
}

func renderOptional(w io.Writer, name string, value *float64) {
	if value == nil {
		fmt.Fprintf(w, "%s: -\n", name)
		return
	}
	fmt.Fprintf(w, "%s: %g\n", name, *value)
}
