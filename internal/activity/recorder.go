// Package activity records the audit trail of product mutations. Recording is
// fire-and-forget: callers never wait on it and never see its errors.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/pkg/logger"
	"go.uber.org/zap"
)

// Subject is the NATS subject activity events are published on.
const Subject = "campus.activity"

const writeTimeout = 5 * time.Second

// Entry is one mutation to record.
type Entry struct {
	CauserID    uint
	Action      models.ActivityAction
	SubjectType string
	SubjectID   uint
	Description string
	Properties  map[string]any
}

// Sink persists entries. Implemented by repository.ActivityRepository.
type Sink interface {
	Create(ctx context.Context, activity *models.Activity) error
}

// Publisher forwards entries to other services.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Recorder struct {
	sink      Sink
	publisher Publisher
	wg        sync.WaitGroup
}

// NewRecorder builds a recorder. publisher may be nil.
func NewRecorder(sink Sink, publisher Publisher) *Recorder {
	return &Recorder{sink: sink, publisher: publisher}
}

// Record writes the entry on its own goroutine. The request context only
// contributes values; its cancellation does not abort the write.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	activity := &models.Activity{
		Action:      entry.Action,
		SubjectType: entry.SubjectType,
		SubjectID:   entry.SubjectID,
		Description: entry.Description,
		Properties:  entry.Properties,
	}
	if entry.CauserID != 0 {
		causer := entry.CauserID
		activity.CauserID = &causer
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()

		if err := r.sink.Create(ctx, activity); err != nil {
			logger.Log.Warn("Failed to record activity",
				zap.String("action", string(activity.Action)),
				zap.String("subject_type", activity.SubjectType),
				zap.Uint("subject_id", activity.SubjectID),
				zap.Error(err),
			)
			return
		}

		if r.publisher == nil {
			return
		}
		if err := r.publisher.Publish(ctx, Subject, activity); err != nil {
			logger.Log.Warn("Failed to publish activity",
				zap.Uint("activity_id", activity.ID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every pending entry has been handled.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
