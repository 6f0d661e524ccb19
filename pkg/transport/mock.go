package transport

import "sync"

// MockSink records notified payloads for tests. Setting Err makes every
// Notify fail with that error.
type MockSink struct {
	mu       sync.Mutex
	payloads [][]byte

	Err error
}

var _ Sink = (*MockSink)(nil)

// Notify records a copy of data, or fails with the configured error.
func (m *MockSink) Notify(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.payloads = append(m.payloads, buf)
	return nil
}

// Payloads returns the recorded payloads in delivery order.
func (m *MockSink) Payloads() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.payloads))
	copy(out, m.payloads)
	return out
}
