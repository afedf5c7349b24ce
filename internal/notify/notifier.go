package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/mr1hm/go-maritime-dashboard/internal/logging"
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
	"github.com/mr1hm/go-maritime-dashboard/internal/worker"
)

type message struct {
	topic   string
	payload []byte
}

// StormNotice is the payload published for a storm at typhoon strength or
// above.
type StormNotice struct {
	AlertID   int                `json:"alert_id"`
	Message   string             `json:"message"`
	Severity  string             `json:"severity"`
	Status    models.StormStatus `json:"status"`
	Latitude  *models.Number     `json:"latitude,omitempty"`
	Longitude *models.Number     `json:"longitude,omitempty"`
	WindKmh   float64            `json:"wind_kmh"`
	At        time.Time          `json:"at"`
}

// DelayNotice is the payload published for a severely delayed ship.
type DelayNotice struct {
	ShipName   string    `json:"ship_name"`
	PortFrom   string    `json:"port_from"`
	PortTo     string    `json:"port_to"`
	DelayHours float64   `json:"delay_hours"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}

// Notifier publishes storm and delay notices through a worker pool. A notice
// is sent again only when its content changes.
type Notifier struct {
	pub    Publisher
	prefix string
	pool   *worker.WorkerPool
	now    func() time.Time
	log    *slog.Logger

	mu   sync.Mutex
	sent map[string]string
}

func NewNotifier(pub Publisher, prefix string, workers, buffer int) *Notifier {
	n := &Notifier{
		pub:    pub,
		prefix: prefix,
		now:    time.Now,
		log:    logging.Component("notify"),
		sent:   make(map[string]string),
	}
	n.pool = worker.NewWorkerPool("notify", workers, buffer, n.process)
	return n
}

func (n *Notifier) Start(ctx context.Context) {
	n.pool.Start(ctx)
}

func (n *Notifier) Stop() {
	n.pool.Stop()
	slog.Info("notifier stopped")
}

func (n *Notifier) process(ctx context.Context, job worker.Job) error {
	msg := job.(message)
	if err := n.pub.Publish(msg.topic, msg.payload); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	n.log.Debug("published", "topic", msg.topic)
	return nil
}

func (n *Notifier) StormTopic() string { return n.prefix + "/storms" }
func (n *Notifier) DelayTopic() string { return n.prefix + "/delays" }

// shouldNotifyStorm is true for typhoons and stronger.
func shouldNotifyStorm(a models.StormAlert) bool {
	return a.Status.Rank() >= models.StormTyphoon.Rank()
}

func shouldNotifyDelay(e models.ETA) bool {
	return models.TierForDelay(e.Delay()) == models.DelaySevere
}

// NotifyStorms queues a notice for every alert worth reporting and returns
// how many were queued.
func (n *Notifier) NotifyStorms(alerts []models.StormAlert) int {
	queued := 0
	for _, a := range alerts {
		if !shouldNotifyStorm(a) {
			continue
		}
		key := "storm:" + strconv.Itoa(a.AlertID) + ":" + a.Message
		fingerprint := string(a.Status) + "|" + a.Severity
		if !n.changed(key, fingerprint) {
			continue
		}

		if n.enqueue(n.StormTopic(), StormNotice{
			AlertID:   a.AlertID,
			Message:   a.Message,
			Severity:  a.Severity,
			Status:    a.Status,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
			WindKmh:   a.WindKmh.Float(),
			At:        n.now(),
		}) {
			queued++
		} else {
			n.forget(key)
		}
	}
	return queued
}

// NotifyDelays queues a notice for every severely delayed ship.
func (n *Notifier) NotifyDelays(records []models.ETA) int {
	queued := 0
	for _, e := range records {
		if !shouldNotifyDelay(e) {
			continue
		}
		key := "ship:" + e.ShipName
		fingerprint := strconv.FormatFloat(e.Delay(), 'f', -1, 64) + "|" + e.Reason
		if !n.changed(key, fingerprint) {
			continue
		}

		if n.enqueue(n.DelayTopic(), DelayNotice{
			ShipName:   e.ShipName,
			PortFrom:   e.PortFrom,
			PortTo:     e.PortTo,
			DelayHours: e.Delay(),
			Reason:     e.Reason,
			At:         n.now(),
		}) {
			queued++
		} else {
			n.forget(key)
		}
	}
	return queued
}

func (n *Notifier) changed(key, fingerprint string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent[key] == fingerprint {
		return false
	}
	n.sent[key] = fingerprint
	return true
}

func (n *Notifier) forget(key string) {
	n.mu.Lock()
	delete(n.sent, key)
	n.mu.Unlock()
}

func (n *Notifier) enqueue(topic string, v any) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		n.log.Error("error encoding notice", "topic", topic, "error", err)
		return false
	}
	if !n.pool.TrySubmit(message{topic: topic, payload: payload}) {
		n.log.Warn("notify queue full, dropping notice", "topic", topic)
		return false
	}
	return true
}
