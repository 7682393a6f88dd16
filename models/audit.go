package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"ows-backend/internal/logger"
)

// AuditEvent is one immutable record of a mutating request.
type AuditEvent struct {
	ID           string                 `bson:"_id,omitempty"`
	UserID       string                 `bson:"user_id"`
	Role         string                 `bson:"role"`
	Action       string                 `bson:"action"`   // CREATE, UPDATE, DELETE
	Resource     string                 `bson:"resource"` // media, show, press, ...
	ResourceID   string                 `bson:"resource_id,omitempty"`
	IPAddress    string                 `bson:"ip_address"`
	UserAgent    string                 `bson:"user_agent"`
	RequestID    string                 `bson:"request_id"`
	Success      bool                   `bson:"success"`
	ErrorMessage string                 `bson:"error_message,omitempty"`
	Changes      map[string]interface{} `bson:"changes,omitempty"`
	CreatedAt    time.Time              `bson:"created_at"`
}

// AuditLogger writes audit events asynchronously so mutation latency is not
// tied to the audit collection.
type AuditLogger struct {
	col    *mongo.Collection
	events chan *AuditEvent
	done   chan struct{}
}

func NewAuditLogger(col *mongo.Collection) *AuditLogger {
	l := &AuditLogger{
		col:    col,
		events: make(chan *AuditEvent, 256),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AuditLogger) run() {
	for ev := range l.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := l.col.InsertOne(ctx, ev); err != nil {
			logger.Error("audit insert failed", "error", err)
		}
		cancel()
	}
	close(l.done)
}

// LogAsync queues an event; drops it when the buffer is full rather than
// blocking the request path.
func (l *AuditLogger) LogAsync(ev *AuditEvent) {
	select {
	case l.events <- ev:
	default:
		logger.Warn("audit buffer full, dropping event", "action", ev.Action, "resource", ev.Resource)
	}
}

// Close flushes queued events and stops the writer.
func (l *AuditLogger) Close() {
	close(l.events)
	<-l.done
}
