package control

import (
	"context"
	"sync"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/credential"
	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/config"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
)

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
}

// mockBinRepo is an in-memory bin.Repository.
type mockBinRepo struct {
	mu   sync.Mutex
	bins map[string]*bin.Bin

	telemetryErr error
}

func newMockBinRepo(bins ...*bin.Bin) *mockBinRepo {
	m := &mockBinRepo{bins: make(map[string]*bin.Bin)}
	for _, b := range bins {
		m.bins[b.ID] = b
	}
	return m
}

func (m *mockBinRepo) GetByID(_ context.Context, id string) (*bin.Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bins[id]
	if !ok {
		return nil, bin.ErrBinNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *mockBinRepo) List(_ context.Context) ([]bin.Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []bin.Bin
	for _, b := range m.bins {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBinRepo) Create(_ context.Context, b *bin.Bin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bins[b.ID]; ok {
		return bin.ErrBinExists
	}
	copied := *b
	m.bins[b.ID] = &copied
	return nil
}

func (m *mockBinRepo) UpdateTelemetry(_ context.Context, id string, levelPercent int, distanceCM float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.telemetryErr != nil {
		return m.telemetryErr
	}
	b, ok := m.bins[id]
	if !ok {
		return bin.ErrBinNotFound
	}
	b.LevelPercent = levelPercent
	b.DistanceCM = distanceCM
	return nil
}

func (m *mockBinRepo) UpdatePresence(_ context.Context, id string, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bins[id]
	if !ok {
		return bin.ErrBinNotFound
	}
	b.Online = online
	return nil
}

func (m *mockBinRepo) UpdateConfig(_ context.Context, id string, update bin.ConfigUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if update.IsEmpty() {
		return bin.ErrEmptyUpdate
	}
	b, ok := m.bins[id]
	if !ok {
		return bin.ErrBinNotFound
	}
	if update.Mode != nil {
		b.Mode = *update.Mode
	}
	if update.ThresholdCM != nil {
		b.ThresholdCM = *update.ThresholdCM
	}
	if update.CapacityCM != nil {
		b.CapacityCM = *update.CapacityCM
	}
	if update.Name != nil {
		b.Name = *update.Name
	}
	if update.Location != nil {
		b.Location = *update.Location
	}
	return nil
}

// mockCredentialRepo is an in-memory credential.Repository.
type mockCredentialRepo struct {
	creds map[string]*credential.Credential
}

func newMockCredentialRepo(creds ...*credential.Credential) *mockCredentialRepo {
	m := &mockCredentialRepo{creds: make(map[string]*credential.Credential)}
	for _, c := range creds {
		m.creds[c.UID] = c
	}
	return m
}

func (m *mockCredentialRepo) GetByUID(_ context.Context, uid string) (*credential.Credential, error) {
	c, ok := m.creds[uid]
	if !ok {
		return nil, credential.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCredentialRepo) List(_ context.Context) ([]credential.Credential, error) {
	var out []credential.Credential
	for _, c := range m.creds {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCredentialRepo) Create(_ context.Context, c *credential.Credential) error {
	if _, ok := m.creds[c.UID]; ok {
		return credential.ErrExists
	}
	copied := *c
	m.creds[c.UID] = &copied
	return nil
}

func (m *mockCredentialRepo) SetActive(_ context.Context, uid string, active bool) error {
	c, ok := m.creds[uid]
	if !ok {
		return credential.ErrNotFound
	}
	c.Active = active
	return nil
}

// mockEventRepo records appended entries.
type mockEventRepo struct {
	mu      sync.Mutex
	entries []eventlog.Entry
}

func (m *mockEventRepo) Append(_ context.Context, e *eventlog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockEventRepo) ListByBin(_ context.Context, binID string, _ int) ([]eventlog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []eventlog.Entry
	for _, e := range m.entries {
		if e.BinID == binID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) ListRecent(_ context.Context, _ int) ([]eventlog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]eventlog.Entry(nil), m.entries...), nil
}

func (m *mockEventRepo) byEvent(event string) []eventlog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []eventlog.Entry
	for _, e := range m.entries {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// published is one captured outbound message.
type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// mockPublisher records published messages.
type mockPublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	body := append([]byte(nil), payload...)
	m.messages = append(m.messages, published{topic: topic, payload: body, qos: qos, retained: retained})
	return nil
}

func (m *mockPublisher) all() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.messages...)
}

// mockMetrics records time-series writes.
type mockMetrics struct {
	mu        sync.Mutex
	fills     []string
	presences []string
}

func (m *mockMetrics) WriteFillLevel(binID string, _ int, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fills = append(m.fills, binID)
}

func (m *mockMetrics) WritePresence(binID string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presences = append(m.presences, binID)
}
