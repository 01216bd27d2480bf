// internal/service/batch_writer.go

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"solar_registration/internal/domain"
	"solar_registration/internal/repository"
	"solar_registration/pkg/logger"
)

// DefaultMaxRetries is the number of failed writes after which a
// registration is dropped from the buffer.
const DefaultMaxRetries = 5

// BatchWriter buffers submitted registrations and writes them in batches
// from a background goroutine. Add never touches the repository.
type BatchWriter struct {
	repo          repository.Repository
	batchSize     int
	flushInterval time.Duration
	maxRetries    int

	mu       sync.Mutex
	buffer   []domain.Registration
	attempts map[string]int
	flushCh  chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	// Stats
	batchesWritten uint64
	recordsWritten uint64
	failedWrites   uint64
	droppedRecords uint64
	lastFlushTime  time.Time
	lastFlushCount int
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(repo repository.Repository, batchSize int, flushInterval time.Duration) *BatchWriter {
	bw := &BatchWriter{
		repo:          repo,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		maxRetries:    DefaultMaxRetries,
		buffer:        make([]domain.Registration, 0, batchSize),
		attempts:      make(map[string]int),
		flushCh:       make(chan struct{}, 1),
		stop:          make(chan struct{}),
		lastFlushTime: time.Now(),
	}

	bw.wg.Add(1)
	go bw.autoFlush()

	logger.Infof("BatchWriter started: %d size, %v interval", batchSize, flushInterval)
	return bw
}

// Add adds a registration to the buffer. A full buffer wakes the
// background flusher instead of writing on the caller's goroutine.
func (bw *BatchWriter) Add(record domain.Registration) {
	bw.mu.Lock()
	bw.buffer = append(bw.buffer, record)
	shouldFlush := len(bw.buffer) >= bw.batchSize
	bw.mu.Unlock()

	if shouldFlush {
		select {
		case bw.flushCh <- struct{}{}:
		default:
		}
	}
}

// Flush writes all buffered registrations to the repository. Registrations
// that failed go back to the head of the buffer until they have failed
// maxRetries times.
func (bw *BatchWriter) Flush() {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return
	}

	toWrite := make([]domain.Registration, len(bw.buffer))
	copy(toWrite, bw.buffer)
	bw.buffer = bw.buffer[:0]
	bw.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startTime := time.Now()
	failed := bw.failedRecords(toWrite, bw.repo.Insert(ctx, toWrite))
	written := len(toWrite) - len(failed)

	bw.mu.Lock()
	retry := make([]domain.Registration, 0, len(failed))
	counted := make(map[string]int, len(failed))
	for _, record := range failed {
		n := bw.attempts[record.ID] + 1
		if n >= bw.maxRetries {
			atomic.AddUint64(&bw.droppedRecords, 1)
			logger.Errorf("Dropping registration %s after %d failed writes", record.ID, n)
			continue
		}
		counted[record.ID] = n
		retry = append(retry, record)
	}
	for _, record := range toWrite {
		if n, ok := counted[record.ID]; ok {
			bw.attempts[record.ID] = n
		} else {
			delete(bw.attempts, record.ID)
		}
	}
	bw.buffer = append(retry, bw.buffer...)
	if written > 0 {
		bw.lastFlushCount = written
		bw.lastFlushTime = time.Now()
	}
	bw.mu.Unlock()

	if written > 0 {
		atomic.AddUint64(&bw.batchesWritten, 1)
		atomic.AddUint64(&bw.recordsWritten, uint64(written))
		logger.Debugf("Flushed %d registrations in %v", written, time.Since(startTime).Round(time.Millisecond))
	}
}

// failedRecords picks the registrations err says were not stored
func (bw *BatchWriter) failedRecords(batch []domain.Registration, err error) []domain.Registration {
	if err == nil {
		return nil
	}
	atomic.AddUint64(&bw.failedWrites, 1)

	var partial *repository.PartialWriteError
	if !errors.As(err, &partial) {
		logger.Error(fmt.Sprintf("Batch write FAILED: %d registrations: %v", len(batch), err))
		return batch
	}

	logger.Error(fmt.Sprintf("Batch write PARTIAL: %d/%d registrations: %v", len(partial.FailedIDs), len(batch), err))
	ids := make(map[string]struct{}, len(partial.FailedIDs))
	for _, id := range partial.FailedIDs {
		ids[id] = struct{}{}
	}
	var failed []domain.Registration
	for _, record := range batch {
		if _, ok := ids[record.ID]; ok {
			failed = append(failed, record)
		}
	}
	return failed
}

// Size returns current buffer size
func (bw *BatchWriter) Size() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}

// autoFlush periodically flushes the buffer
func (bw *BatchWriter) autoFlush() {
	defer bw.wg.Done()
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bw.Flush()
		case <-bw.flushCh:
			bw.Flush()
		case <-bw.stop:
			bw.Flush()
			return
		}
	}
}

// Stats returns writer statistics
func (bw *BatchWriter) Stats() map[string]interface{} {
	bw.mu.Lock()
	lastCount, lastTime := bw.lastFlushCount, bw.lastFlushTime
	bw.mu.Unlock()

	return map[string]interface{}{
		"batches_written":  atomic.LoadUint64(&bw.batchesWritten),
		"records_written":  atomic.LoadUint64(&bw.recordsWritten),
		"failed_writes":    atomic.LoadUint64(&bw.failedWrites),
		"dropped_records":  atomic.LoadUint64(&bw.droppedRecords),
		"buffer_size":      bw.Size(),
		"last_flush_count": lastCount,
		"last_flush_time":  lastTime.Format("15:04:05"),
	}
}

// Close stops the batch writer and flushes remaining data
func (bw *BatchWriter) Close() {
	bw.once.Do(func() {
		close(bw.stop)
		bw.wg.Wait()
		logger.WithFields(map[string]interface{}{
			"batches":   atomic.LoadUint64(&bw.batchesWritten),
			"written":   atomic.LoadUint64(&bw.recordsWritten),
			"dropped":   atomic.LoadUint64(&bw.droppedRecords),
			"unflushed": bw.Size(),
		}, "BatchWriter closed")
	})
}
