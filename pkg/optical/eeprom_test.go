package optical

import (
	"errors"
	"reflect"
	"testing"
)

func newTestOptiCal(conn Connection) *OptiCal {
	return &OptiCal{conn: conn, mode: ModeCurrent, state: StateReady}
}

func TestReadEEPROMAllAddresses(t *testing.T) {
	for addr := 0; addr < EEPROMSize; addr++ {
		cmd := CmdReadEEPROM + byte(addr)
		want := byte(0xff - addr)
		conn := NewMockConnection(map[byte][]byte{cmd: {want, ACK}})
		o := newTestOptiCal(conn)

		got, err := o.ReadEEPROM(addr)
		if err != nil {
			t.Fatalf("ReadEEPROM(%d) error = %v", addr, err)
		}
		if got != want {
			t.Errorf("ReadEEPROM(%d) = 0x%02x, want 0x%02x", addr, got, want)
		}
		if written := conn.Written(); !reflect.DeepEqual(written, []byte{cmd}) {
			t.Errorf("ReadEEPROM(%d) wrote % x, want %02x", addr, written, cmd)
		}
	}
}

func TestReadEEPROMErrors(t *testing.T) {
	tests := []struct {
		name    string
		reply   []byte
		timeout bool
		nack    bool
	}{
		{name: "empty reply", reply: nil, timeout: true},
		{name: "short reply", reply: []byte{0x42}, timeout: true},
		{name: "nack", reply: []byte{0x42, NACK}, nack: true},
		{name: "nack only", reply: []byte{NACK}, nack: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := NewMockConnection(map[byte][]byte{CmdReadEEPROM + 32: tt.reply})
			o := newTestOptiCal(conn)

			_, err := o.ReadEEPROM(32)
			var terr *TimeoutError
			var nerr *NACKError
			if got := errors.As(err, &terr); got != tt.timeout {
				t.Errorf("TimeoutError = %v, want %v (err %v)", got, tt.timeout, err)
			}
			if got := errors.As(err, &nerr); got != tt.nack {
				t.Errorf("NACKError = %v, want %v (err %v)", got, tt.nack, err)
			}
			if err != nil && err.Error() != "OptiCal timeout while trying to: reading eeprom at address 32" &&
				err.Error() != "OptiCal sent a NACK while trying to: reading eeprom at address 32" {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestReadEEPROMOutOfRange(t *testing.T) {
	for _, addr := range []int{-1, 100, 255} {
		conn := NewMockConnection(nil)
		o := newTestOptiCal(conn)

		_, err := o.ReadEEPROM(addr)
		var cerr *ConfigurationError
		if !errors.As(err, &cerr) {
			t.Errorf("ReadEEPROM(%d) error = %v, want ConfigurationError", addr, err)
		}
		if len(conn.Written()) != 0 {
			t.Errorf("ReadEEPROM(%d) wrote to the connection", addr)
		}
	}
}

func TestReadEEPROMRange(t *testing.T) {
	var mem [EEPROMSize]byte
	for i := range mem {
		mem[i] = byte(i * 3)
	}
	conn := NewMockDevice(mem, nil)
	o := newTestOptiCal(conn)

	got, err := o.ReadEEPROMRange(80, 95)
	if err != nil {
		t.Fatalf("ReadEEPROMRange() error = %v", err)
	}
	if !reflect.DeepEqual(got, mem[80:96]) {
		t.Errorf("ReadEEPROMRange() = % x, want % x", got, mem[80:96])
	}

	written := conn.Written()
	for i, cmd := range written {
		if cmd != CmdReadEEPROM+byte(80+i) {
			t.Errorf("command %d = 0x%02x, want 0x%02x", i, cmd, CmdReadEEPROM+byte(80+i))
		}
	}
}

func TestReadEEPROMRangeAborts(t *testing.T) {
	conn := NewMockDevice([EEPROMSize]byte{}, nil)
	conn.SetReply(CmdReadEEPROM+18, []byte{0x00, NACK})
	o := newTestOptiCal(conn)

	_, err := o.ReadEEPROMRange(16, 19)
	var nerr *NACKError
	if !errors.As(err, &nerr) {
		t.Fatalf("ReadEEPROMRange() error = %v, want NACKError", err)
	}
	if nerr.Op != "reading eeprom at address 18" {
		t.Errorf("Op = %q", nerr.Op)
	}
	// 16, 17, 18 and nothing after the failure.
	if n := len(conn.Written()); n != 3 {
		t.Errorf("sent %d commands, want 3", n)
	}
}

func TestDumpEEPROM(t *testing.T) {
	// Stay clear of the NACK byte.
	var mem [EEPROMSize]byte
	for i := range mem {
		mem[i] = byte(i + 0x30)
	}
	o := newTestOptiCal(NewMockDevice(mem, nil))

	got, err := o.DumpEEPROM()
	if err != nil {
		t.Fatalf("DumpEEPROM() error = %v", err)
	}
	if !reflect.DeepEqual(got, mem[:]) {
		t.Errorf("DumpEEPROM() = % x", got)
	}
}

func TestLittleEndian(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint64
	}{
		{name: "one", in: []byte{0x01, 0x00, 0x00, 0x00}, want: 1},
		{name: "256", in: []byte{0x00, 0x01}, want: 256},
		{name: "empty", in: nil, want: 0},
		{name: "three bytes", in: []byte{0x00, 0x00, 0x08}, want: 524288},
		{name: "max uint32", in: []byte{0xff, 0xff, 0xff, 0xff}, want: 0xffffffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LittleEndian(tt.in); got != tt.want {
				t.Errorf("LittleEndian(% x) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
