package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/users-api/internal/core/ports"
	"github.com/99minutos/users-api/internal/pkg/metrics"
)

const (
	defaultWorkers     = 4
	channelBuffer      = 256
	defaultSendTimeout = 10 * time.Second
)

var (
	ErrQueueFull   = errors.New("mail queue is full")
	ErrQueueClosed = errors.New("mail queue is closed")
)

// MailQueue delivers emails asynchronously through a fixed set of workers.
// Messages are sharded by recipient so mail to one address keeps its order.
type MailQueue struct {
	workers     []chan ports.EmailMessage
	sender      ports.MailSender
	sendTimeout time.Duration
	log         zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewMailQueue creates a MailQueue in front of sender. If numWorkers <= 0,
// defaultWorkers is used.
func NewMailQueue(numWorkers int, sender ports.MailSender, sendTimeout time.Duration, log zerolog.Logger) *MailQueue {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	q := &MailQueue{
		workers:     make([]chan ports.EmailMessage, numWorkers),
		sender:      sender,
		sendTimeout: sendTimeout,
		log:         log,
	}
	for i := range q.workers {
		q.workers[i] = make(chan ports.EmailMessage, channelBuffer)
	}
	return q
}

// Start launches the worker goroutines.
func (q *MailQueue) Start() {
	for i, ch := range q.workers {
		q.wg.Add(1)
		go q.runWorker(i, ch)
	}
}

// Send enqueues msg without blocking. It returns ErrQueueFull when the
// recipient's worker is saturated.
func (q *MailQueue) Send(_ context.Context, msg ports.EmailMessage) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	idx := q.shardIndex(msg.To)
	select {
	case q.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting messages and waits for the workers to drain, or
// for ctx to end.
func (q *MailQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		for _, ch := range q.workers {
			close(ch)
		}
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MailQueue) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(q.workers)))
}

func (q *MailQueue) runWorker(id int, ch <-chan ports.EmailMessage) {
	defer q.wg.Done()
	label := strconv.Itoa(id)

	for msg := range ch {
		metrics.MailQueueDepth.WithLabelValues(label).Dec()

		ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
		err := q.sender.Send(ctx, msg)
		cancel()

		if err != nil {
			q.log.Error().Err(err).
				Str("category", msg.Category).
				Int("worker_id", id).
				Msg("queued email delivery failed")
		}
	}
}
