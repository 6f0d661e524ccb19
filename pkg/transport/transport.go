// Package transport carries readings from the node to a connected peer.
// The node only ever calls Notify and tolerates its failure: a reading that
// cannot be delivered is dropped and superseded by the next tick's reading.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotConnected means no peer is listening. Silently droppable.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrBusy means the peer cannot take the payload right now.
	// Silently droppable; there are no retries.
	ErrBusy = errors.New("transport: busy")
)

// Droppable reports whether err is a transient delivery failure the node
// swallows without logging. Anything else is logged but never fatal.
func Droppable(err error) bool {
	return errors.Is(err, ErrNotConnected) || errors.Is(err, ErrBusy)
}

// Sink delivers a formatted reading outward.
type Sink interface {
	Notify(data []byte) error
}

// Discard is the no-transport variant: every reading is dropped on the floor.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify([]byte) error { return nil }

// Encoder formats one conversion (one value per channel) for the wire.
type Encoder func(ch1, ch2 int16) []byte

const (
	// BinaryLen is the notify payload length: two little-endian int16
	// values, channel 1 first. This is the peer protocol.
	BinaryLen = 4

	// MaxTextLen bounds the debug text encoding, matching the fixed
	// buffer the reference firmware formats into.
	MaxTextLen = 20
)

// EncodeBinary produces the notify payload: 4 raw bytes, little-endian
// 16-bit signed value per channel, channel 1 then channel 2.
func EncodeBinary(ch1, ch2 int16) []byte {
	b := make([]byte, BinaryLen)
	binary.LittleEndian.PutUint16(b[0:2], uint16(ch1))
	binary.LittleEndian.PutUint16(b[2:4], uint16(ch2))
	return b
}

// DecodeBinary unpacks a notify payload.
func DecodeBinary(b []byte) (ch1, ch2 int16, err error) {
	if len(b) != BinaryLen {
		return 0, 0, fmt.Errorf("transport: payload length %d, want %d", len(b), BinaryLen)
	}
	ch1 = int16(binary.LittleEndian.Uint16(b[0:2]))
	ch2 = int16(binary.LittleEndian.Uint16(b[2:4]))
	return ch1, ch2, nil
}

// EncodeText produces the UART/debug stream line "N1:<int>,N2:<int>\r\n",
// truncated to MaxTextLen bytes.
func EncodeText(ch1, ch2 int16) []byte {
	s := "N1:" + strconv.Itoa(int(ch1)) + ",N2:" + strconv.Itoa(int(ch2)) + "\r\n"
	if len(s) > MaxTextLen {
		s = s[:MaxTextLen]
	}
	return []byte(s)
}

// ParseText parses one debug stream line (with or without the trailing
// CRLF) back into per-channel readings.
func ParseText(line string) (ch1, ch2 int16, err error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("transport: invalid line %q", line)
	}
	v1, ok1 := strings.CutPrefix(parts[0], "N1:")
	v2, ok2 := strings.CutPrefix(parts[1], "N2:")
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("transport: invalid line %q", line)
	}
	n1, err := strconv.ParseInt(v1, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("transport: invalid channel 1 value: %w", err)
	}
	n2, err := strconv.ParseInt(v2, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("transport: invalid channel 2 value: %w", err)
	}
	return int16(n1), int16(n2), nil
}
