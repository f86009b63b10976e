package daemon

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charlie0129/optical/pkg/config"
	"github.com/charlie0129/optical/pkg/events"
	"github.com/charlie0129/optical/pkg/optical"
)

var testRefs = optical.References{
	VRef:   2500000,
	ZCount: 1234,
	RFeed:  100000,
	RGain:  49900,
	KCal:   31250,
}

func putLE(mem *[optical.EEPROMSize]byte, start int, v int64) {
	for i := 0; i < 4; i++ {
		mem[start+i] = byte(v >> (8 * uint(i)))
	}
}

// setupTestDevice points the daemon at an initialized OptiCal on a mock
// connection.
func setupTestDevice(t *testing.T, mode string, adc []byte) *optical.MockConnection {
	t.Helper()

	var mem [optical.EEPROMSize]byte
	putLE(&mem, optical.RefVoltageStart, testRefs.VRef)
	putLE(&mem, optical.ZeroErrorStart, testRefs.ZCount)
	putLE(&mem, optical.FeedbackResistorStart, testRefs.RFeed)
	putLE(&mem, optical.VoltageGainStart, testRefs.RGain)
	putLE(&mem, optical.ProbeCalibrationStart, testRefs.KCal)
	mem[optical.ProbeSerialNumberStart] = 'P'

	conn := optical.NewMockDevice(mem, adc)
	o, err := optical.New(conn, mode)
	if err != nil {
		t.Fatalf("optical.New() error = %v", err)
	}

	dev = o
	conf = config.NewFileFromConfig(nil, "")
	recorder = NewMeasurementRecorder(10)
	hub = events.NewEventHub()

	return conn
}

func doGet(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	setupRoutes().ServeHTTP(w, req)
	return w
}

func TestGetLuminance(t *testing.T) {
	adc := []byte{0x10, 0x27, 0x09, optical.ACK}
	setupTestDevice(t, "current", adc)

	w := doGet(t, "/luminance")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /luminance = %d: %s", w.Code, w.Body.String())
	}

	var got float64
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want, err := optical.Convert(0x092710-testRefs.ZCount-524288, testRefs, optical.ModeCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("luminance = %v, want %v", got, want)
	}
}

func TestGetErrors(t *testing.T) {
	tests := []struct {
		name string
		mode string
		adc  []byte
		path string
		want int
	}{
		{name: "mode mismatch", mode: "current", adc: []byte{0, 0, 8, optical.ACK}, path: "/voltage", want: http.StatusBadRequest},
		{name: "nack", mode: "voltage", adc: []byte{0, 0, 8, optical.NACK}, path: "/voltage", want: http.StatusBadGateway},
		{name: "timeout", mode: "voltage", adc: nil, path: "/measurement", want: http.StatusGatewayTimeout},
		{name: "bad address", mode: "current", path: "/eeprom/abc", want: http.StatusBadRequest},
		{name: "address out of range", mode: "current", path: "/eeprom/100", want: http.StatusBadRequest},
		{name: "bad duration", mode: "current", path: "/history?last=soon", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestDevice(t, tt.mode, tt.adc)

			w := doGet(t, tt.path)
			if w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d: %s", tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetMeasurementRecords(t *testing.T) {
	setupTestDevice(t, "voltage", []byte{0x00, 0x00, 0x0c, optical.ACK})

	for i := 0; i < 3; i++ {
		w := doGet(t, "/measurement")
		if w.Code != http.StatusOK {
			t.Fatalf("GET /measurement = %d: %s", w.Code, w.Body.String())
		}
	}

	w := doGet(t, "/history")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /history = %d", w.Code)
	}
	var history []optical.Measurement
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("history has %d records, want 3", len(history))
	}
	if history[0].Unit != "V" || history[0].ADC != 786432-testRefs.ZCount-524288 {
		t.Errorf("history[0] = %+v", history[0])
	}

	w = doGet(t, "/history?last=1m")
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Errorf("history?last=1m has %d records, want 3", len(history))
	}
}

func TestGetEEPROM(t *testing.T) {
	conn := setupTestDevice(t, "current", nil)

	w := doGet(t, "/eeprom/80")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /eeprom/80 = %d: %s", w.Code, w.Body.String())
	}
	var got EEPROMByte
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Address != 80 || got.Value != 'P' {
		t.Errorf("GET /eeprom/80 = %+v", got)
	}

	written := conn.Written()
	if last := written[len(written)-1]; last != optical.CmdReadEEPROM+80 {
		t.Errorf("last command = 0x%02x, want 0x%02x", last, optical.CmdReadEEPROM+80)
	}
}

func TestGetInfoAndReferences(t *testing.T) {
	setupTestDevice(t, "current", nil)

	w := doGet(t, "/info")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /info = %d: %s", w.Code, w.Body.String())
	}
	var info optical.DeviceInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.ProbeSerialNumber != "P" || info.References != testRefs || info.Mode != "current" {
		t.Errorf("GET /info = %+v", info)
	}

	w = doGet(t, "/references")
	var ref optical.References
	if err := json.Unmarshal(w.Body.Bytes(), &ref); err != nil {
		t.Fatal(err)
	}
	if ref != testRefs {
		t.Errorf("GET /references = %+v, want %+v", ref, testRefs)
	}
}

func TestGetConfigAndVersion(t *testing.T) {
	setupTestDevice(t, "current", nil)

	w := doGet(t, "/config")
	var raw config.RawFileConfig
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw.Mode == nil || *raw.Mode != "current" {
		t.Errorf("GET /config = %s", w.Body.String())
	}

	w = doGet(t, "/version")
	if w.Code != http.StatusOK {
		t.Errorf("GET /version = %d", w.Code)
	}
}

func TestGetWithoutDevice(t *testing.T) {
	setupTestDevice(t, "current", nil)
	dev = nil
	t.Cleanup(func() { dev = nil })

	for _, path := range []string{"/info", "/references", "/measurement", "/eeprom/0"} {
		w := doGet(t, path)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s without device = %d, want %d", path, w.Code, http.StatusInternalServerError)
		}
	}
}

func TestLastMeasurementAndClearHistory(t *testing.T) {
	conn := setupTestDevice(t, "voltage", []byte{0x00, 0x00, 0x0c, optical.ACK})

	if w := doGet(t, "/measurement/last"); w.Code != http.StatusNotFound {
		t.Errorf("GET /measurement/last before sampling = %d, want %d", w.Code, http.StatusNotFound)
	}

	if w := doGet(t, "/measurement"); w.Code != http.StatusOK {
		t.Fatalf("GET /measurement = %d: %s", w.Code, w.Body.String())
	}
	written := len(conn.Written())

	w := doGet(t, "/measurement/last")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /measurement/last = %d", w.Code)
	}
	var m optical.Measurement
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.Unit != "V" {
		t.Errorf("last measurement = %+v", m)
	}
	if n := len(conn.Written()); n != written {
		t.Errorf("GET /measurement/last wrote %d bytes to the device", n-written)
	}

	req := httptest.NewRequest(http.MethodDelete, "/history", nil)
	rec := httptest.NewRecorder()
	setupRoutes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /history = %d", rec.Code)
	}
	if n := len(recorder.GetRecords()); n != 0 {
		t.Errorf("history has %d records after DELETE, want 0", n)
	}
}
