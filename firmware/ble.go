//go:build bluetooth

package main

import (
	"fmt"

	"tinygo.org/x/bluetooth"

	"github.com/itohio/ntcnode/pkg/transport"
)

const deviceName = "NTC_Sensor"

// Vendor UUID base with the service and readings aliases filled in.
var (
	serviceUUID = bluetooth.NewUUID([16]byte{
		0xEF, 0xCD, 0x00, 0x01, 0x78, 0x56, 0x34, 0x12,
		0xEF, 0xCD, 0xAB, 0x90, 0x78, 0x56, 0x34, 0x12,
	})
	readingsUUID = bluetooth.NewUUID([16]byte{
		0xEF, 0xCD, 0x12, 0x34, 0x78, 0x56, 0x34, 0x12,
		0xEF, 0xCD, 0xAB, 0x90, 0x78, 0x56, 0x34, 0x12,
	})
)

// newSink brings up the SoftDevice, starts advertising, and registers the
// readings characteristic. Each conversion is pushed as a notification.
func newSink() (transport.Sink, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable adapter: %w", err)
	}

	adv := adapter.DefaultAdvertisement()
	err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    deviceName,
		ServiceUUIDs: []bluetooth.UUID{serviceUUID},
	})
	if err != nil {
		return nil, fmt.Errorf("configure advertisement: %w", err)
	}
	if err := adv.Start(); err != nil {
		return nil, fmt.Errorf("start advertisement: %w", err)
	}

	var readings bluetooth.Characteristic
	var value [transport.BinaryLen]byte
	err = adapter.AddService(&bluetooth.Service{
		UUID: serviceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &readings,
				UUID:   readingsUUID,
				Value:  value[:],
				Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("add service: %w", err)
	}

	return &bleSink{readings: &readings}, nil
}

func encoder() transport.Encoder { return transport.EncodeBinary }

type bleSink struct {
	readings *bluetooth.Characteristic
}

var _ transport.Sink = (*bleSink)(nil)

// Notify updates the characteristic value, which notifies any subscribed
// central. With no central connected the write still succeeds; the stack
// returning busy maps to the droppable transport error.
func (s *bleSink) Notify(data []byte) error {
	if _, err := s.readings.Write(data); err != nil {
		return fmt.Errorf("%w: %v", transport.ErrBusy, err)
	}
	return nil
}
