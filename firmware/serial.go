//go:build !bluetooth

package main

import "github.com/itohio/ntcnode/pkg/transport"

// Without the wireless stack the readings go out as text on the UART debug
// console, where the host-side link package picks them up.
func newSink() (transport.Sink, error) { return uartSink{}, nil }

func encoder() transport.Encoder { return transport.EncodeText }

type uartSink struct{}

var _ transport.Sink = uartSink{}

func (uartSink) Notify(data []byte) error {
	print(string(data))
	return nil
}
