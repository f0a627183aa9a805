package service

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"go.uber.org/zap"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

type AuditService struct {
	repo    AuditRepository
	log     *zap.Logger
	entries chan *domain.AuditLog
	done    chan struct{}
}

const auditBufferSize = 10_000

func NewAuditService(repo AuditRepository, log *zap.Logger) *AuditService {
	svc := &AuditService{
		repo:    repo,
		log:     log,
		entries: make(chan *domain.AuditLog, auditBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues an audit entry for async persistence.
// If the buffer is full, the entry is dropped and a warning is emitted.
func (s *AuditService) LogAsync(ctx context.Context, entry AuditEntry) {
	al := &domain.AuditLog{
		UserID:       entry.UserID,
		UserRole:     domain.Role(entry.UserRole),
		Action:       domain.AuditAction(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		Changes:      entry.Changes,
		OccurredAt:   time.Now().UTC(),
	}

	select {
	case s.entries <- al:
	default:
		s.log.Warn("audit buffer full, dropping entry",
			zap.String("resource_type", entry.ResourceType),
			zap.String("resource_id", entry.ResourceID),
		)
	}
}

func (s *AuditService) worker() {
	for entry := range s.entries {
		// Persistence uses a detached context: the originating request may
		// already be finished by the time the entry is written.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist audit entry", zap.Error(err))
		}
		cancel()
	}
	close(s.done)
}

// Close drains the buffer and stops the worker. Call during shutdown.
func (s *AuditService) Close() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("audit service close timed out before draining")
	}
}
