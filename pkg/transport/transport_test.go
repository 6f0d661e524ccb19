package transport_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/ntcnode/pkg/transport"
)

func TestEncodeBinary(t *testing.T) {
	tests := []struct {
		name     string
		ch1, ch2 int16
		want     []byte
	}{
		{
			name: "zero readings",
			want: []byte{0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "reference layout",
			ch1:  0x0123,
			ch2:  0x0345,
			// Little-endian, channel 1 then channel 2.
			want: []byte{0x23, 0x01, 0x45, 0x03},
		},
		{
			name: "negative reading",
			ch1:  -1,
			ch2:  512,
			want: []byte{0xFF, 0xFF, 0x00, 0x02},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transport.EncodeBinary(tt.ch1, tt.ch2)
			assert.Equal(t, tt.want, got)

			ch1, ch2, err := transport.DecodeBinary(got)
			require.NoError(t, err)
			assert.Equal(t, tt.ch1, ch1)
			assert.Equal(t, tt.ch2, ch2)
		})
	}
}

func TestDecodeBinaryLength(t *testing.T) {
	_, _, err := transport.DecodeBinary([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestEncodeText(t *testing.T) {
	assert.Equal(t, []byte("N1:100,N2:-3\r\n"), transport.EncodeText(100, -3))

	// The widest readings still fit the fixed buffer.
	line := transport.EncodeText(-32768, -32768)
	assert.LessOrEqual(t, len(line), transport.MaxTextLen)
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		ch1, ch2 int16
		wantErr  bool
	}{
		{
			name: "plain line",
			line: "N1:512,N2:498",
			ch1:  512,
			ch2:  498,
		},
		{
			name: "crlf terminated",
			line: "N1:0,N2:-12\r\n",
			ch1:  0,
			ch2:  -12,
		},
		{
			name:    "missing channel",
			line:    "N1:512",
			wantErr: true,
		},
		{
			name:    "wrong labels",
			line:    "A:1,B:2",
			wantErr: true,
		},
		{
			name:    "non-numeric",
			line:    "N1:abc,N2:2",
			wantErr: true,
		},
		{
			name:    "empty",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch1, ch2, err := transport.ParseText(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ch1, ch1)
			assert.Equal(t, tt.ch2, ch2)
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	ch1, ch2, err := transport.ParseText(string(transport.EncodeText(734, -8)))
	require.NoError(t, err)
	assert.Equal(t, int16(734), ch1)
	assert.Equal(t, int16(-8), ch2)
}

func TestDroppable(t *testing.T) {
	assert.True(t, transport.Droppable(transport.ErrNotConnected))
	assert.True(t, transport.Droppable(transport.ErrBusy))
	assert.True(t, transport.Droppable(fmt.Errorf("notify: %w", transport.ErrBusy)))
	assert.False(t, transport.Droppable(errors.New("link layer exploded")))
	assert.False(t, transport.Droppable(nil))
}

func TestMockSinkRecordsCopies(t *testing.T) {
	sink := &transport.MockSink{}

	buf := transport.EncodeBinary(1, 2)
	require.NoError(t, sink.Notify(buf))
	buf[0] = 0xEE // mutation after Notify must not leak into the record

	payloads := sink.Payloads()
	require.Len(t, payloads, 1)
	assert.Equal(t, transport.EncodeBinary(1, 2), payloads[0])
}

func TestSerialSinkNotConnected(t *testing.T) {
	sink := transport.NewSerialSink("/dev/null-port", 0)
	err := sink.Notify([]byte{1})
	assert.ErrorIs(t, err, transport.ErrNotConnected)
	assert.False(t, sink.IsConnected())
	assert.NoError(t, sink.Close())
}
