// internal/service/service.go

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"solar_registration/internal/config"
	"solar_registration/internal/domain"
	"solar_registration/internal/editor"
	"solar_registration/internal/repository"
	"solar_registration/pkg/logger"

	"github.com/google/uuid"
)

// Session is one editing session. mu serialises every operation on the
// editor, which is itself single-writer.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	editor *editor.Editor
}

// Service manages editing sessions and hands submitted trees to storage
type Service struct {
	cfg      *config.Config
	repo     repository.Repository
	batch    *BatchWriter
	sessions *Cache

	sessionsCreated uint64
	editsApplied    uint64
	editsRejected   uint64
	submissions     uint64
}

// NewService creates the service on top of a registration repository
func NewService(repo repository.Repository, cfg *config.Config) *Service {
	svc := &Service{
		cfg:      cfg,
		repo:     repo,
		batch:    NewBatchWriter(repo, cfg.BatchSize, cfg.FlushEvery()),
		sessions: NewCache(time.Minute),
	}

	logger.Infof("Service initialized (DB: %s, Batch: %d, Session TTL: %v)",
		repo.Type(), cfg.BatchSize, cfg.SessionLifetime())
	return svc
}

// CreateSession starts a new editor and returns its id and first projection
func (svc *Service) CreateSession(requestID string) (string, editor.Projection) {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		editor:    editor.New(),
	}
	svc.sessions.Set(s.ID, s, svc.cfg.SessionLifetime())
	atomic.AddUint64(&svc.sessionsCreated, 1)

	logger.WriteLog("INFO", requestID, "SESSION", fmt.Sprintf("created session %s", s.ID))
	return s.ID, s.editor.Projection()
}

// Projection returns the current read model of a session
func (svc *Service) Projection(sessionID string) (editor.Projection, error) {
	s, err := svc.session(sessionID)
	if err != nil {
		return editor.Projection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Projection(), nil
}

// DeleteSession discards a session and its unsubmitted tree
func (svc *Service) DeleteSession(requestID, sessionID string) error {
	if !svc.sessions.Delete(sessionID) {
		return domain.SessionNotFoundError{ID: sessionID}
	}
	logger.WriteLog("INFO", requestID, "SESSION", fmt.Sprintf("deleted session %s", sessionID))
	return nil
}

// Apply runs one editor operation on a session and returns the new
// projection. A rejected operation leaves the session unchanged.
func (svc *Service) Apply(requestID, sessionID, action string, op func(*editor.Editor) error) (editor.Projection, error) {
	s, err := svc.session(sessionID)
	if err != nil {
		return editor.Projection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := op(s.editor); err != nil {
		atomic.AddUint64(&svc.editsRejected, 1)
		logger.WriteLog("WARN", requestID, action, fmt.Sprintf("session %s: %v", sessionID, err))
		return editor.Projection{}, err
	}

	atomic.AddUint64(&svc.editsApplied, 1)
	logger.WriteLog("DEBUG", requestID, action,
		fmt.Sprintf("session %s revision %d view %s", sessionID, s.editor.Revision(), s.editor.State().View))
	return s.editor.Projection(), nil
}

// Submit queues the session's tree for storage and returns the id of the
// registration it will be stored under.
func (svc *Service) Submit(ctx context.Context, requestID, sessionID string) (string, error) {
	s, err := svc.session(sessionID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &sessionSubmitter{sessionID: sessionID, batch: svc.batch}
	if err := s.editor.Submit(ctx, sub); err != nil {
		logger.WriteLog("ERROR", requestID, "SUBMIT", err)
		return "", err
	}

	atomic.AddUint64(&svc.submissions, 1)
	logger.WriteLog("INFO", requestID, "SUBMIT",
		fmt.Sprintf("session %s queued as registration %s", sessionID, sub.registrationID))
	return sub.registrationID, nil
}

// GetStats returns session, edit and storage counters
func (svc *Service) GetStats(ctx context.Context) (domain.Stats, error) {
	applied := atomic.LoadUint64(&svc.editsApplied)
	rejected := atomic.LoadUint64(&svc.editsRejected)

	stats := domain.Stats{
		ActiveSessions:  svc.sessions.Size(),
		SessionsCreated: atomic.LoadUint64(&svc.sessionsCreated),
		EditsApplied:    applied,
		EditsRejected:   rejected,
		Submissions:     atomic.LoadUint64(&svc.submissions),
		BufferSize:      svc.batch.Size(),
		DatabaseType:    svc.repo.Type(),
	}
	if total := applied + rejected; total > 0 {
		stats.RejectionRate = float64(rejected) / float64(total) * 100
	}

	count, err := svc.repo.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to count registrations: %w", err)
	}
	stats.StoredCount = count
	return stats, nil
}

// WriterStats exposes batch writer and session cache counters
func (svc *Service) WriterStats() map[string]interface{} {
	return map[string]interface{}{
		"writer":   svc.batch.Stats(),
		"sessions": svc.sessions.Stats(),
	}
}

// Flush forces buffered registrations to storage
func (svc *Service) Flush() {
	svc.batch.Flush()
}

// Close flushes pending registrations and stops background work
func (svc *Service) Close() {
	svc.batch.Close()
	svc.sessions.Close()
}

func (svc *Service) session(id string) (*Session, error) {
	v, ok := svc.sessions.Get(id)
	if !ok {
		return nil, domain.SessionNotFoundError{ID: id}
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, errors.New("corrupt session entry")
	}
	return s, nil
}

// sessionSubmitter turns a submitted tree into a registration and queues it
type sessionSubmitter struct {
	sessionID      string
	batch          *BatchWriter
	registrationID string
}

func (s *sessionSubmitter) Submit(ctx context.Context, tree domain.Tree) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.registrationID = uuid.NewString()
	s.batch.Add(domain.Registration{
		ID:          s.registrationID,
		SessionID:   s.sessionID,
		SubmittedAt: time.Now().UTC(),
		Tree:        tree,
	})
	return nil
}
