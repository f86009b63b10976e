package daemon

import (
	"testing"
	"time"

	"github.com/charlie0129/optical/pkg/optical"
)

func measurementAt(v float64, ago time.Duration) optical.Measurement {
	return optical.Measurement{Mode: "current", Value: v, Unit: "cd/m^2", Time: time.Now().Add(-ago)}
}

func TestMeasurementRecorder_AddRecord(t *testing.T) {
	r := NewMeasurementRecorder(3)
	for i := 0; i < 5; i++ {
		r.AddRecord(measurementAt(float64(i), 0))
	}

	got := r.GetRecords()
	if len(got) != 3 {
		t.Fatalf("len(GetRecords()) = %d, want 3", len(got))
	}
	for i, m := range got {
		if m.Value != float64(i+2) {
			t.Errorf("record %d = %v, want %v", i, m.Value, i+2)
		}
	}

	last, ok := r.GetLastRecord()
	if !ok || last.Value != 4 {
		t.Errorf("GetLastRecord() = %v, %v", last.Value, ok)
	}

	r.ClearRecords()
	if _, ok := r.GetLastRecord(); ok {
		t.Errorf("GetLastRecord() after ClearRecords() returned a record")
	}
}

func TestMeasurementRecorder_Disabled(t *testing.T) {
	r := NewMeasurementRecorder(0)
	r.AddRecord(measurementAt(1, 0))
	if n := len(r.GetRecords()); n != 0 {
		t.Errorf("recorded %d measurements with a zero history size", n)
	}
}

func TestMeasurementRecorder_GetRecordsIn(t *testing.T) {
	tests := []struct {
		name    string
		records []optical.Measurement
		last    time.Duration
		want    int
	}{
		{
			name: "all recent",
			records: []optical.Measurement{
				measurementAt(1, 30*time.Second),
				measurementAt(2, 20*time.Second),
				measurementAt(3, 10*time.Second),
			},
			last: 40 * time.Second,
			want: 3,
		},
		{
			name: "some recent",
			records: []optical.Measurement{
				measurementAt(1, 70*time.Second),
				measurementAt(2, 60*time.Second),
				measurementAt(3, 40*time.Second),
				measurementAt(4, 10*time.Second),
			},
			last: 50 * time.Second,
			want: 2,
		},
		{
			name: "none recent",
			records: []optical.Measurement{
				measurementAt(1, 70*time.Second),
			},
			last: 50 * time.Second,
			want: 0,
		},
		{
			name: "empty",
			last: time.Minute,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewMeasurementRecorder(10)
			for _, m := range tt.records {
				r.AddRecord(m)
			}
			if got := r.GetRecordsIn(tt.last); len(got) != tt.want {
				t.Errorf("GetRecordsIn() = %d records, want %d", len(got), tt.want)
			}
		})
	}
}
