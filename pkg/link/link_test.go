package link

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, stream string, bufSize int) []Reading {
	t.Helper()

	s := New("test", 0, bufSize)
	s.readFrom(strings.NewReader(stream))
	close(s.readings)

	var out []Reading
	for r := range s.Readings() {
		out = append(out, r)
	}
	return out
}

func TestReadStream(t *testing.T) {
	stream := "N1:512,N2:498\r\n" +
		"N1:515,N2:501\r\n" +
		"N1:-3,N2:0\r\n"

	readings := collect(t, stream, 0)
	require.Len(t, readings, 3)

	assert.Equal(t, int16(512), readings[0].NTC1)
	assert.Equal(t, int16(498), readings[0].NTC2)
	assert.Equal(t, int16(515), readings[1].NTC1)
	assert.Equal(t, int16(-3), readings[2].NTC1)
	assert.Equal(t, int16(0), readings[2].NTC2)
	assert.False(t, readings[0].Timestamp.IsZero())
}

func TestReadStreamSkipsGarbage(t *testing.T) {
	stream := "N1:512,N2:498\r\n" +
		"\r\n" + // blank
		"bootloader banner\r\n" + // not a reading
		"N1:nope,N2:1\r\n" + // malformed value
		"N1:513,N2:499\r\n"

	readings := collect(t, stream, 0)
	require.Len(t, readings, 2)
	assert.Equal(t, int16(512), readings[0].NTC1)
	assert.Equal(t, int16(513), readings[1].NTC1)
}

func TestReadStreamDropsWhenFull(t *testing.T) {
	// Channel of one: the middle readings are dropped, not blocked on.
	stream := "N1:1,N2:1\r\nN1:2,N2:2\r\nN1:3,N2:3\r\n"

	readings := collect(t, stream, 1)
	require.Len(t, readings, 1)
	assert.Equal(t, int16(1), readings[0].NTC1)
}

func TestCloseWithoutConnect(t *testing.T) {
	s := New("test", 0, 0)
	assert.NoError(t, s.Close())
	assert.False(t, s.IsConnected())
}
