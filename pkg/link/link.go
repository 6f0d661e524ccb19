// Package link receives the node's UART debug stream on the host and turns
// it into a channel of readings.
package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/itohio/ntcnode/pkg/transport"
)

const (
	// DefaultBaudRate is the standard baud rate for the node's UART.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

// Reading is one reported conversion received from the node.
type Reading struct {
	Timestamp time.Time
	NTC1      int16
	NTC2      int16
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial receives readings from the node over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	readings  chan Reading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial link for the given port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		readings: make(chan Reading, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading the stream.
func (s *Serial) Connect() error {
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

	go func() {
		s.readFrom(s.conn)
		close(s.readings)
	}()

	return nil
}

// Close closes the connection and stops the reader.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	s.cancel()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		s.conn = nil
	}

	s.connected = false
	return nil
}

// Readings returns the channel of received readings. The channel is closed
// when the stream ends.
func (s *Serial) Readings() <-chan Reading {
	return s.readings
}

// IsConnected returns whether the link is currently open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// readFrom parses the text stream line by line. Malformed lines are logged
// and skipped; a full channel drops the reading, the next one supersedes it.
func (s *Serial) readFrom(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		ch1, ch2, err := transport.ParseText(line)
		if err != nil {
			log.Printf("Failed to parse line %q: %v", line, err)
			continue
		}

		reading := Reading{Timestamp: time.Now(), NTC1: ch1, NTC2: ch2}
		select {
		case s.readings <- reading:
		case <-s.ctx.Done():
			return
		default:
			log.Printf("Readings channel full, dropping reading")
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		log.Printf("Error reading from serial port: %v", err)
	}
}
