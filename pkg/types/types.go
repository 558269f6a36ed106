// Package types
package types

import (
	"time"
)

// SensorReading is a single validated row parsed from an uploaded CSV.
// Readings are fed straight into the aggregator and never persisted.
type SensorReading struct {
	SensorID  string    `json:"sensor_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type ProcessingStatus string

const (
	StatusUploaded   ProcessingStatus = "uploaded"
	StatusProcessing ProcessingStatus = "processing"
	StatusProcessed  ProcessingStatus = "processed"
	StatusPartial    ProcessingStatus = "partial"
	StatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether no further writes will happen for a record
// in this state.
func (s ProcessingStatus) Terminal() bool {
	switch s {
	case StatusProcessed, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// Aggregates holds the statistics computed over the accepted rows of one
// file. Min/max/mean are nil exactly when RowCount is zero.
type Aggregates struct {
	RowCount       uint            `json:"row_count"`
	MinValue       *float64        `json:"min_value"`
	MaxValue       *float64        `json:"max_value"`
	MeanValue      *float64        `json:"mean_value"`
	PerSensorCount map[string]uint `json:"per_sensor_count"`
}

// Clone returns a detached copy safe to hand across goroutines.
func (a *Aggregates) Clone() *Aggregates {
	if a == nil {
		return nil
	}
	out := Aggregates{
		RowCount:       a.RowCount,
		PerSensorCount: make(map[string]uint, len(a.PerSensorCount)),
	}
	if a.MinValue != nil {
		v := *a.MinValue
		out.MinValue = &v
	}
	if a.MaxValue != nil {
		v := *a.MaxValue
		out.MaxValue = &v
	}
	if a.MeanValue != nil {
		v := *a.MeanValue
		out.MeanValue = &v
	}
	for k, v := range a.PerSensorCount {
		out.PerSensorCount[k] = v
	}
	return &out
}

// ProcessingError describes one rejected CSV row. Row numbers are 1-based
// with the header counted as row 1.
type ProcessingError struct {
	RowNumber uint   `json:"row_number"`
	Reason    string `json:"reason"`
}

// ProcessingResult is the durable record for one uploaded file, keyed by
// FileID. The processor is its sole writer.
type ProcessingResult struct {
	FileID       string            `json:"file_id"`
	Status       ProcessingStatus  `json:"status"`
	UploadedAt   time.Time         `json:"uploaded_at"`
	ProcessedAt  *time.Time        `json:"processed_at"`
	ProcessingMS *int64            `json:"processing_ms"`
	Aggregates   *Aggregates       `json:"aggregates"`
	Errors       []ProcessingError `json:"errors"`
}

// Clone returns a detached copy; mutating it never affects stored state.
func (r *ProcessingResult) Clone() *ProcessingResult {
	if r == nil {
		return nil
	}
	out := ProcessingResult{
		FileID:     r.FileID,
		Status:     r.Status,
		UploadedAt: r.UploadedAt,
		Aggregates: r.Aggregates.Clone(),
	}
	if r.ProcessedAt != nil {
		t := *r.ProcessedAt
		out.ProcessedAt = &t
	}
	if r.ProcessingMS != nil {
		ms := *r.ProcessingMS
		out.ProcessingMS = &ms
	}
	if r.Errors != nil {
		out.Errors = make([]ProcessingError, len(r.Errors))
		copy(out.Errors, r.Errors)
	}
	return &out
}
