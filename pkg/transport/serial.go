package transport

import (
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate is the standard baud rate for the node's UART.
const DefaultBaudRate = 115200

// SerialSink delivers readings over a serial port. It is the host-facing
// counterpart of the node's UART debug stream and carries the text encoding.
type SerialSink struct {
	port     string
	baudRate int

	mu        sync.Mutex
	conn      serial.Port
	connected bool
}

var _ Sink = (*SerialSink)(nil)

// NewSerialSink creates a sink for the named port.
func NewSerialSink(port string, baudRate int) *SerialSink {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &SerialSink{port: port, baudRate: baudRate}
}

// Connect opens the serial port.
func (s *SerialSink) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	conn, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}
	s.conn = conn
	s.connected = true
	return nil
}

// Close closes the serial port.
func (s *SerialSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.connected = false
	return err
}

// IsConnected reports whether the port is open.
func (s *SerialSink) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Notify writes one payload to the port. With the port closed the payload is
// droppable, like a disconnected peer.
func (s *SerialSink) Notify(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return ErrNotConnected
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}
