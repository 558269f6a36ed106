// Package aggregate computes summary statistics over sensor readings
// in a single streaming pass.
package aggregate

import (
	"github.com/ntentasd/aggregator-api/pkg/types"
)

// Accumulator folds readings one at a time; it never needs the full
// sequence in memory. The zero value is not usable, call New.
type Accumulator struct {
	count     uint
	sum       float64
	min       float64
	max       float64
	perSensor map[string]uint
}

func New() *Accumulator {
	return &Accumulator{
		perSensor: make(map[string]uint),
	}
}

// Add folds one reading into the running statistics. Strict
// comparisons mean the first-seen extreme wins on ties; output values
// are identical either way.
func (a *Accumulator) Add(reading types.SensorReading) {
	if a.count == 0 {
		a.min = reading.Value
		a.max = reading.Value
	} else {
		if reading.Value < a.min {
			a.min = reading.Value
		}
		if reading.Value > a.max {
			a.max = reading.Value
		}
	}

	a.count++
	a.sum += reading.Value
	a.perSensor[reading.SensorID]++
}

// Summary materializes the current statistics. Min/max/mean are nil
// when no readings were added.
func (a *Accumulator) Summary() *types.Aggregates {
	out := &types.Aggregates{
		RowCount:       a.count,
		PerSensorCount: make(map[string]uint, len(a.perSensor)),
	}
	for k, v := range a.perSensor {
		out.PerSensorCount[k] = v
	}

	if a.count == 0 {
		return out
	}

	min, max := a.min, a.max
	mean := a.sum / float64(a.count)
	out.MinValue = &min
	out.MaxValue = &max
	out.MeanValue = &mean
	return out
}

// Aggregate consumes an entire sequence and returns its summary. The
// sequence is pulled lazily through next, which returns false when
// exhausted.
func Aggregate(next func() (types.SensorReading, bool)) *types.Aggregates {
	acc := New()
	for {
		reading, ok := next()
		if !ok {
			return acc.Summary()
		}
		acc.Add(reading)
	}
}
