package events

import "encoding/json"

// Names of the events published by the daemon.
const (
	Measurement      = "measurement"
	MeasurementError = "measurement.error"
)

// Event is one server-sent event as received by a client.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// MeasurementErrorEvent is published when taking a sample fails. Ts is
// a unix timestamp.
type MeasurementErrorEvent struct {
	Error string `json:"error"`
	Ts    int64  `json:"ts"`
}

// DecodeAs unmarshals the payload of e into T. An event without data
// decodes to the zero value.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
