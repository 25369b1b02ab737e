package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// batchWriter queues values and saves them from one goroutine, either
// when a batch fills up or when the flush timer fires.
type batchWriter[T any] struct {
	name string
	save func(ctx context.Context, batch []T) error
	log  *slog.Logger

	// write queue and worker control
	writeQ   chan T
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once

	writeBatchSize int           // how many values to write in a single save
	writeFlushFreq time.Duration // max wait before flushing batch
}

func newBatchWriter[T any](name string, writeQSize, batchSize int, log *slog.Logger, save func(context.Context, []T) error) *batchWriter[T] {
	if log == nil {
		log = slog.Default()
	}
	return &batchWriter[T]{
		name:           name,
		save:           save,
		log:            log,
		writeQ:         make(chan T, writeQSize),
		stopCh:         make(chan struct{}),
		writeBatchSize: batchSize,
		writeFlushFreq: 200 * time.Millisecond,
	}
}

func (w *batchWriter[T]) start() {
	w.wg.Add(1)
	go w.writeWorker()
}

// stop blocks until the queue is drained.
func (w *batchWriter[T]) stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	w.wg.Wait()
}

// enqueue fails fast when the queue is full.
func (w *batchWriter[T]) enqueue(v T) error {
	select {
	case w.writeQ <- v:
		return nil
	default:
		return ErrQueueFull.WithDetails(w.name)
	}
}

func (w *batchWriter[T]) writeWorker() {
	defer w.wg.Done()
	batch := make([]T, 0, w.writeBatchSize)
	flushTimer := time.NewTimer(w.writeFlushFreq)
	defer flushTimer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.save(context.Background(), batch); err != nil {
			w.log.Error("storage write failed", "writer", w.name, "batch", len(batch), "err", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-w.stopCh:
			for {
				select {
				case v := <-w.writeQ:
					batch = append(batch, v)
					if len(batch) >= w.writeBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case v := <-w.writeQ:
			batch = append(batch, v)
			if len(batch) >= w.writeBatchSize {
				flush()
				if !flushTimer.Stop() {
					<-flushTimer.C
				}
				flushTimer.Reset(w.writeFlushFreq)
			}
		case <-flushTimer.C:
			flush()
			flushTimer.Reset(w.writeFlushFreq)
		}
	}
}
