package optical

import (
	"bytes"
	"io"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// sendCommand discards pending input, writes a single command byte and
// reads up to n reply bytes.
// A short reply is returned as is; checkResponse turns it into a timeout.
func (o *OptiCal) sendCommand(cmd byte, n int) ([]byte, error) {
	logrus.WithFields(logrus.Fields{
		"cmd":  cmd,
		"size": n,
	}).Trace("Trying to send command to OptiCal")

	// Drop leftovers of an earlier reply, or they would be read as the
	// reply to this command.
	if f, ok := o.conn.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to flush input before command 0x%02x", cmd)
		}
	}

	if _, err := o.conn.Write([]byte{cmd}); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to write command 0x%02x", cmd)
	}

	resp, err := readResponse(o.conn, n)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read reply to command 0x%02x", cmd)
	}

	logrus.WithFields(logrus.Fields{
		"cmd":  cmd,
		"resp": resp,
	}).Trace("Got reply from OptiCal")

	return resp, nil
}

// readResponse reads until n bytes arrived or a read comes back empty,
// which is how the serial port reports an elapsed read timeout.
func readResponse(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		m, err := r.Read(buf[got:])
		got += m
		if err == io.EOF || (err == nil && m == 0) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return buf[:got], nil
}

// checkResponse validates a reply of the expected size. An empty reply is a
// timeout and a NACK anywhere in the reply is a rejection, even if the reply
// is short. Any other short reply is a timeout as well.
func checkResponse(resp []byte, want int, description string) ([]byte, error) {
	if len(resp) == 0 {
		return nil, &TimeoutError{Op: description}
	}
	if bytes.IndexByte(resp, NACK) >= 0 {
		return nil, &NACKError{Op: description}
	}
	if len(resp) < want {
		return nil, &TimeoutError{Op: description}
	}

	return resp, nil
}

// command sends cmd and returns the validated reply.
func (o *OptiCal) command(cmd byte, n int, description string) ([]byte, error) {
	resp, err := o.sendCommand(cmd, n)
	if err != nil {
		return nil, err
	}

	return checkResponse(resp, n, description)
}

// control sends a command answered by a single ACK.
func (o *OptiCal) control(cmd byte, description string) error {
	_, err := o.command(cmd, controlReplySize, description)
	return err
}
