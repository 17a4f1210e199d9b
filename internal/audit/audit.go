package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wiratama/access-management/pkg/logger"
)

const (
	KindDenial    = "denial"
	KindException = "exception"

	EventAccessDenied = "audit.access_denied"
	EventException    = "audit.exception"
)

// Record is one persisted audit entry: an authorization denial or an
// unhandled failure on the authorization path.
type Record struct {
	ID            int64     `json:"id"`
	TraceID       string    `json:"trace_id"`
	Kind          string    `json:"kind"`
	UserID        int64     `json:"user_id,omitempty"`
	RequestMethod string    `json:"request_method"`
	RequestURI    string    `json:"request_uri"`
	ErrorCode     string    `json:"error_code"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store is the persistence collaborator for audit entries.
type Store interface {
	Save(record *Record) error
	Recent(limit int) ([]*Record, error)
}

// Service publishes audit events on the bus and persists them through a
// subscribed handler, so callers never wait on the database.
type Service struct {
	store  Store
	bus    *EventBus
	logger *slog.Logger
}

func NewService(store Store, bus *EventBus, lg *slog.Logger) *Service {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	s := &Service{store: store, bus: bus, logger: lg}
	bus.Subscribe(EventAccessDenied, s.persist)
	bus.Subscribe(EventException, s.persist)
	return s
}

// RecordDenial is the gate's DenialRecorder hook.
func (s *Service) RecordDenial(ctx context.Context, method, uri string, userID int64, code, message string) {
	s.publish(ctx, EventAccessDenied, KindDenial, method, uri, userID, code, message)
}

// RecordException captures unhandled failures (panics, unexpected errors)
// observed at the HTTP boundary.
func (s *Service) RecordException(ctx context.Context, method, uri string, code, message string) {
	s.publish(ctx, EventException, KindException, method, uri, 0, code, message)
}

func (s *Service) publish(ctx context.Context, eventType, kind, method, uri string, userID int64, code, message string) {
	event := BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"kind":           kind,
			"user_id":        userID,
			"request_method": method,
			"request_uri":    uri,
			"error_code":     code,
			"message":        message,
		},
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish audit event", "error", err)
	}
}

func (s *Service) persist(ctx context.Context, event Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return nil
	}

	record := &Record{
		TraceID:   event.EventID(),
		CreatedAt: event.OccurredAt(),
	}
	if v, ok := data["kind"].(string); ok {
		record.Kind = v
	}
	if v, ok := data["user_id"].(int64); ok {
		record.UserID = v
	}
	if v, ok := data["request_method"].(string); ok {
		record.RequestMethod = v
	}
	if v, ok := data["request_uri"].(string); ok {
		record.RequestURI = v
	}
	if v, ok := data["error_code"].(string); ok {
		record.ErrorCode = v
	}
	if v, ok := data["message"].(string); ok {
		record.Message = v
	}

	return s.store.Save(record)
}

// Recent returns the latest audit entries, newest first.
func (s *Service) Recent(limit int) ([]*Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.Recent(limit)
}
