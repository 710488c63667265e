package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"casaleon/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler receives every notification taken from the queue
type Handler func(models.Notification) error

// NotificationQueue is an in-memory queue of lead notifications
type NotificationQueue struct {
	items    chan models.Notification
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewNotificationQueue creates a new queue with the specified buffer size
func NewNotificationQueue(bufferSize int, logger *logrus.Logger) *NotificationQueue {
	return &NotificationQueue{
		items:    make(chan models.Notification, bufferSize),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]Handler, 0),
	}
}

// Push adds a notification without blocking the caller
func (q *NotificationQueue) Push(n models.Notification) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send: a full queue drops the notification
	select {
	case q.items <- n:
		q.logger.WithFields(logrus.Fields{
			"lead_id": n.LeadID,
			"kind":    n.Kind,
		}).Debug("Pushed notification to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each notification
func (q *NotificationQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue. Calling it again is a no-op.
func (q *NotificationQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	q.wg.Add(1)
	go q.process()
}

// process handles the queue processing loop until the queue is closed and drained
func (q *NotificationQueue) process() {
	defer q.wg.Done()
	for n := range q.items {
		q.dispatch(n)
	}
}

// dispatch sends the notification to all subscribed handlers
func (q *NotificationQueue) dispatch(n models.Notification) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(n); err != nil {
			q.logger.WithError(err).WithField("lead_id", n.LeadID).Error("Handler failed to process notification")
		}
	}
}

// Close stops accepting notifications, delivers the ones already queued and
// waits for the processing loop to exit
func (q *NotificationQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Len returns the current number of notifications waiting in the queue
func (q *NotificationQueue) Len() int {
	return len(q.items)
}

// Cap returns the queue capacity
func (q *NotificationQueue) Cap() int {
	return q.maxSize
}

// IsClosed returns whether the queue has been closed
func (q *NotificationQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
