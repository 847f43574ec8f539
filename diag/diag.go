// Package diag mirrors log lines to a serial console so the beacon can be
// watched over a 115200 8N1 link with no network attached.
package diag

import (
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// SerialHook is a logrus hook writing human-readable lines to a serial port.
type SerialHook struct {
	port serial.Port
}

// Open configures the named port at 115200 8N1.
func Open(device string) (*SerialHook, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	return &SerialHook{port: port}, nil
}

func (h *SerialHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *SerialHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	_, err = h.port.Write([]byte(line))
	return err
}

func (h *SerialHook) Close() error {
	return h.port.Close()
}
