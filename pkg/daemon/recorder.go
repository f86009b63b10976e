package daemon

import (
	"sync"
	"time"

	"github.com/charlie0129/optical/pkg/optical"
)

// MeasurementRecorder records the last N measurements.
type MeasurementRecorder struct {
	MaxRecordCount int
	Records        []optical.Measurement
	mu             *sync.Mutex
}

// NewMeasurementRecorder returns a new MeasurementRecorder.
func NewMeasurementRecorder(maxRecordCount int) *MeasurementRecorder {
	return &MeasurementRecorder{
		MaxRecordCount: maxRecordCount,
		Records:        make([]optical.Measurement, 0),
		mu:             &sync.Mutex{},
	}
}

// AddRecord adds a new record, dropping the oldest one when full.
func (r *MeasurementRecorder) AddRecord(m optical.Measurement) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.MaxRecordCount <= 0 {
		return
	}

	// Strip monotonic clock reading.
	m.Time = m.Time.Round(0)

	if len(r.Records) >= r.MaxRecordCount {
		r.Records = r.Records[len(r.Records)-r.MaxRecordCount+1:]
	}
	r.Records = append(r.Records, m)
}

// ClearRecords clears all records.
func (r *MeasurementRecorder) ClearRecords() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Records = make([]optical.Measurement, 0)
}

// GetRecords returns a copy of the records, oldest first.
func (r *MeasurementRecorder) GetRecords() []optical.Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]optical.Measurement(nil), r.Records...)
}

// GetRecordsIn returns the records taken within the last duration, oldest
// first.
func (r *MeasurementRecorder) GetRecordsIn(last time.Duration) []optical.Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := len(r.Records)
	for i > 0 && time.Since(r.Records[i-1].Time) <= last {
		i--
	}

	return append([]optical.Measurement(nil), r.Records[i:]...)
}

// GetLastRecord returns the last record and whether there is one.
func (r *MeasurementRecorder) GetLastRecord() (optical.Measurement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Records) == 0 {
		return optical.Measurement{}, false
	}

	return r.Records[len(r.Records)-1], true
}
