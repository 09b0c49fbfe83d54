package activity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Baaaki/campus-market/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	entries []*models.Activity
	err     error
}

func (s *memorySink) Create(ctx context.Context, a *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	a.ID = uint(len(s.entries) + 1)
	s.entries = append(s.entries, a)
	return nil
}

type memoryPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []interface{}
}

func (p *memoryPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestRecorder_WritesAndPublishes(t *testing.T) {
	sink := &memorySink{}
	pub := &memoryPublisher{}
	rec := NewRecorder(sink, pub)

	rec.Record(context.Background(), Entry{
		CauserID:    7,
		Action:      models.ActionCreated,
		SubjectType: "product",
		SubjectID:   3,
		Description: "created",
		Properties:  map[string]any{"attributes": map[string]any{"name": "Lamp"}},
	})
	rec.Wait()

	require.Len(t, sink.entries, 1)
	got := sink.entries[0]
	require.NotNil(t, got.CauserID)
	assert.Equal(t, uint(7), *got.CauserID)
	assert.Equal(t, models.ActionCreated, got.Action)
	assert.Equal(t, uint(3), got.SubjectID)

	assert.Equal(t, []string{Subject}, pub.subjects)
	assert.Same(t, got, pub.payloads[0])
}

func TestRecorder_SurvivesCanceledContext(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Record(ctx, Entry{Action: models.ActionDeleted, SubjectType: "product", SubjectID: 1})
	rec.Wait()

	require.Len(t, sink.entries, 1)
	assert.Nil(t, sink.entries[0].CauserID, "zero causer is stored as null")
}

func TestRecorder_SinkFailureSkipsPublish(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	pub := &memoryPublisher{}
	rec := NewRecorder(sink, pub)

	rec.Record(context.Background(), Entry{Action: models.ActionUpdated, SubjectType: "product", SubjectID: 1})
	rec.Wait()

	assert.Empty(t, sink.entries)
	assert.Empty(t, pub.subjects)
}

func TestRecorder_ConcurrentRecords(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink, nil)

	for i := 0; i < 20; i++ {
		rec.Record(context.Background(), Entry{Action: models.ActionCreated, SubjectType: "product", SubjectID: uint(i + 1)})
	}
	rec.Wait()

	assert.Len(t, sink.entries, 20)
}
