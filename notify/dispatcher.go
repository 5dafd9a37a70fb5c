// Package notify delivers per-user inbox notifications produced by order
// transitions. Dispatch is fire-and-log: it never blocks the caller and never
// rolls back the transition that produced it.
package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"peer-delivery-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stats counts what happened to dispatched notifications
type Stats struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Dispatcher writes notifications from a single background worker.
type Dispatcher struct {
	db           *gorm.DB
	logger       *zap.Logger
	queue        chan models.Notification
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher starts the worker. Call Close to drain and stop it.
func NewDispatcher(db *gorm.DB, logger *zap.Logger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		db:           db,
		logger:       logger.Named("notify"),
		queue:        make(chan models.Notification, queueSize),
		writeTimeout: 5 * time.Second,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Notify queues n without blocking. A full queue or a closed dispatcher drops it.
func (d *Dispatcher) Notify(n models.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "dispatcher closed")
		return
	}
	select {
	case d.queue <- n:
	default:
		d.drop(n, "queue full")
	}
}

func (d *Dispatcher) drop(n models.Notification, reason string) {
	d.dropped.Add(1)
	d.logger.Warn("notification dropped",
		zap.String("reason", reason),
		zap.Uint("user_id", n.UserID),
		zap.String("type", string(n.Type)),
	)
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.write(n)
	}
}

// errOrderGone aborts writing a notification whose order was deleted while
// it sat in the queue.
var errOrderGone = errors.New("order no longer exists")

func (d *Dispatcher) write(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
	defer cancel()

	n.ID = 0
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if n.OrderID != nil {
			var live int64
			if err := tx.Model(&models.Order{}).Where("order_id = ?", *n.OrderID).Count(&live).Error; err != nil {
				return err
			}
			if live == 0 {
				return errOrderGone
			}
		}
		return tx.Create(&n).Error
	})
	switch {
	case err == nil:
		d.delivered.Add(1)
	case errors.Is(err, errOrderGone):
		d.drop(n, err.Error())
	default:
		d.failed.Add(1)
		d.logger.Error("failed to store notification",
			zap.Uint("user_id", n.UserID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}

// Close stops accepting notifications and waits until the queue is written out.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}
