package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes ledger events to a fixed set of workers using consistent
// hashing on the borrow record id, so the borrow and return of one record are
// stored in order. It implements ports.LedgerPublisher.
type Dispatcher struct {
	workers []chan domain.LedgerEvent
	repo    ports.LedgerRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.LedgerRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.LedgerEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LedgerEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Close once their channel is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands the event to its worker without blocking. When the worker's
// channel is full, or the dispatcher is closed, the event is dropped.
func (d *Dispatcher) Publish(event domain.LedgerEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	select {
	case d.workers[d.shardIndex(event.RecordID)] <- event:
	default:
		d.drop(event, "worker queue full")
	}
}

// Close stops accepting events and waits for the workers to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a record id deterministically to a worker index.
func (d *Dispatcher) shardIndex(recordID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(recordID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(event domain.LedgerEvent, reason string) {
	metrics.LedgerEventsTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("action", string(event.Action)).
		Int64("record_id", event.RecordID).
		Str("reason", reason).
		Msg("ledger event dropped")
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.LedgerEvent) {
	defer d.wg.Done()
	depth := metrics.LedgerQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				depth.Set(0)
				return
			}
			depth.Set(float64(len(ch)))

			if err := d.repo.Insert(ctx, &event); err != nil {
				metrics.LedgerEventsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("action", string(event.Action)).
					Int64("record_id", event.RecordID).
					Int("worker_id", id).
					Msg("ledger event not stored")
				continue
			}
			metrics.LedgerEventsTotal.WithLabelValues("stored").Inc()
		}
	}
}
