package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solar_registration/internal/domain"
	"solar_registration/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyRepo struct {
	mu    sync.Mutex
	fail  bool
	saved []domain.Registration
}

func (r *flakyRepo) Insert(_ context.Context, records []domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("store unavailable")
	}
	r.saved = append(r.saved, records...)
	return nil
}

func (r *flakyRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.saved)), nil
}

func (r *flakyRepo) Type() string { return "flaky" }

// dedupRepo behaves like a unique _id index: ids already stored are
// skipped, and ids in failOnce are rejected on their first attempt only.
type dedupRepo struct {
	mu       sync.Mutex
	stored   map[string]bool
	failOnce map[string]bool
	calls    int
}

func newDedupRepo(failOnce ...string) *dedupRepo {
	r := &dedupRepo{stored: map[string]bool{}, failOnce: map[string]bool{}}
	for _, id := range failOnce {
		r.failOnce[id] = true
	}
	return r
}

func (r *dedupRepo) Insert(_ context.Context, records []domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	var failed []string
	for _, rec := range records {
		if r.failOnce[rec.ID] {
			delete(r.failOnce, rec.ID)
			failed = append(failed, rec.ID)
			continue
		}
		r.stored[rec.ID] = true
	}
	if len(failed) > 0 {
		return &repository.PartialWriteError{FailedIDs: failed, Err: errors.New("write timeout")}
	}
	return nil
}

func (r *dedupRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.stored)), nil
}

func (r *dedupRepo) Type() string { return "dedup" }

// blockingRepo holds every Insert until release is closed
type blockingRepo struct {
	entered chan struct{}
	release chan struct{}
}

func (r *blockingRepo) Insert(_ context.Context, _ []domain.Registration) error {
	select {
	case r.entered <- struct{}{}:
	default:
	}
	<-r.release
	return nil
}

func (r *blockingRepo) Count(_ context.Context) (int64, error) { return 0, nil }

func (r *blockingRepo) Type() string { return "blocking" }

func registration(id string) domain.Registration {
	return domain.Registration{ID: id, Tree: domain.EmptyTree()}
}

func TestBatchWriter_FlushesOnSize(t *testing.T) {
	repo := repository.NewMemoryRepo()
	bw := NewBatchWriter(repo, 2, time.Hour)
	defer bw.Close()

	bw.Add(registration("a"))
	assert.Equal(t, 1, bw.Size())

	bw.Add(registration("b"))

	assert.Eventually(t, func() bool {
		count, err := repo.Count(context.Background())
		return err == nil && count == 2 && bw.Size() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestBatchWriter_CloseFlushesRemainder(t *testing.T) {
	repo := repository.NewMemoryRepo()
	bw := NewBatchWriter(repo, 10, time.Hour)

	bw.Add(registration("a"))
	bw.Close()

	assert.Len(t, repo.All(), 1)
	assert.NotPanics(t, bw.Close)
}

func TestBatchWriter_RetainsFailedBatch(t *testing.T) {
	repo := &flakyRepo{fail: true}
	bw := NewBatchWriter(repo, 10, time.Hour)
	defer bw.Close()

	bw.Add(registration("a"))
	bw.Flush()
	assert.Equal(t, 1, bw.Size())
	assert.Equal(t, uint64(1), bw.Stats()["failed_writes"])

	repo.mu.Lock()
	repo.fail = false
	repo.mu.Unlock()

	bw.Flush()
	assert.Zero(t, bw.Size())
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "a", repo.saved[0].ID)
}

func TestBatchWriter_AutoFlush(t *testing.T) {
	repo := repository.NewMemoryRepo()
	bw := NewBatchWriter(repo, 10, 20*time.Millisecond)
	defer bw.Close()

	bw.Add(registration("a"))

	assert.Eventually(t, func() bool {
		return len(repo.All()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestBatchWriter_PartialFailureRequeuesOnlyFailed(t *testing.T) {
	repo := newDedupRepo("b")
	bw := NewBatchWriter(repo, 10, time.Hour)
	defer bw.Close()

	bw.Add(registration("a"))
	bw.Add(registration("b"))

	bw.Flush()
	assert.Equal(t, 1, bw.Size())
	stats := bw.Stats()
	assert.Equal(t, uint64(1), stats["failed_writes"])
	assert.Equal(t, uint64(1), stats["records_written"])

	bw.Flush()
	assert.Zero(t, bw.Size())
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stats = bw.Stats()
	assert.Equal(t, uint64(1), stats["failed_writes"])
	assert.Equal(t, uint64(2), stats["records_written"])
	assert.Equal(t, uint64(2), stats["batches_written"])

	bw.Flush()
	assert.Equal(t, 2, repo.calls)
}

func TestBatchWriter_DropsAfterMaxRetries(t *testing.T) {
	repo := &flakyRepo{fail: true}
	bw := NewBatchWriter(repo, 10, time.Hour)
	defer bw.Close()
	bw.maxRetries = 3

	bw.Add(registration("a"))
	for i := 0; i < 2; i++ {
		bw.Flush()
		assert.Equal(t, 1, bw.Size())
	}

	bw.Flush()
	assert.Zero(t, bw.Size())
	assert.Equal(t, uint64(1), bw.Stats()["dropped_records"])
	assert.Equal(t, uint64(3), bw.Stats()["failed_writes"])
	assert.Empty(t, bw.attempts)
}

func TestBatchWriter_AddDoesNotWaitForRepository(t *testing.T) {
	repo := &blockingRepo{entered: make(chan struct{}, 1), release: make(chan struct{})}
	bw := NewBatchWriter(repo, 1, time.Hour)
	defer bw.Close()
	defer close(repo.release)

	done := make(chan struct{})
	go func() {
		bw.Add(registration("a"))
		bw.Add(registration("b"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Add blocked on the repository")
	}

	select {
	case <-repo.entered:
	case <-time.After(time.Second):
		t.Fatal("full buffer did not trigger a background flush")
	}
}
