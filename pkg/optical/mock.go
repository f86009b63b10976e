package optical

import (
	"bytes"
	"io"
	"sync"
)

// MockConnection is an in-memory OptiCal. Each written command byte queues
// the reply registered for it; commands without a reply produce nothing, so
// the next read times out.
type MockConnection struct {
	mu      sync.Mutex
	replies map[byte][]byte
	written []byte
	pending bytes.Buffer
	closed  bool
}

// NewMockConnection returns a MockConnection answering with the given
// replies, keyed by command byte.
func NewMockConnection(replies map[byte][]byte) *MockConnection {
	m := &MockConnection{
		replies: make(map[byte][]byte),
	}
	for cmd, reply := range replies {
		m.SetReply(cmd, reply)
	}
	return m
}

// NewMockDevice returns a MockConnection behaving like a healthy OptiCal
// with the given EEPROM contents and ADC reply. Control commands are ACKed
// and every EEPROM address replies with its byte followed by ACK.
func NewMockDevice(eeprom [EEPROMSize]byte, adc []byte) *MockConnection {
	m := NewMockConnection(map[byte][]byte{
		CmdCalibrate:   {ACK},
		CmdCurrentMode: {ACK},
		CmdVoltageMode: {ACK},
		CmdReadADC:     adc,
	})
	for addr, b := range eeprom {
		m.SetReply(CmdReadEEPROM+byte(addr), []byte{b, ACK})
	}
	return m
}

// SetReply sets the reply for a command. A nil reply removes it.
func (m *MockConnection) SetReply(cmd byte, reply []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if reply == nil {
		delete(m.replies, cmd)
		return
	}
	m.replies[cmd] = append([]byte(nil), reply...)
}

// Written returns every byte written so far.
func (m *MockConnection) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.written...)
}

// Closed reports whether Close was called.
func (m *MockConnection) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func (m *MockConnection) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, io.ErrClosedPipe
	}

	for _, cmd := range p {
		m.written = append(m.written, cmd)
		if reply, ok := m.replies[cmd]; ok {
			m.pending.Write(reply)
		}
	}

	return len(p), nil
}

func (m *MockConnection) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, io.ErrClosedPipe
	}
	if m.pending.Len() == 0 {
		return 0, io.EOF
	}

	return m.pending.Read(p)
}

// Flush discards replies that were queued but not read.
func (m *MockConnection) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	m.pending.Reset()
	return nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.pending.Reset()
	return nil
}
