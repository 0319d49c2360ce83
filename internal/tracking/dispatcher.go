package tracking

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danghamo/presence/pkg/logger"
)

// EventPublisher publishes accepted-report events to downstream
// collaborators (persistence, audit). Delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// PositionMirror persists last-known positions outside the process so
// the store can be re-seeded after a restart. The core never blocks on
// it and never rolls back state when it fails.
type PositionMirror interface {
	Save(ctx context.Context, record PositionRecord) error
}

const (
	// observerQueueSize bounds each connection's outbound event queue.
	// When a queue is full the oldest pending event is dropped.
	observerQueueSize = 64

	// mirrorQueueSize bounds the queue feeding the mirror writer
	mirrorQueueSize = 256
)

// observerQueue buffers outbound events for one connection so a slow
// observer delays only its own delivery.
type observerQueue struct {
	handle ConnectionHandle
	ch     chan []byte
}

// Dispatcher ingests worker reports, maintains last-known-position and
// timeline state, derives alerts and fans enriched events out to every
// registered observer connection.
type Dispatcher struct {
	logger    *logger.Logger
	store     *PositionStore
	timeline  *Timeline
	alerts    *AlertEvaluator
	registry  *Registry
	publisher EventPublisher
	mirror    PositionMirror
	validate  *validator.Validate
	now       func() time.Time

	// mu serializes the read-detect-update section of Submit so two
	// concurrent reports for one worker cannot both read the same
	// stale previous position.
	mu sync.Mutex

	queueMu sync.Mutex
	queues  map[string]*observerQueue

	mirrorCh chan PositionRecord
}

// DispatcherOption configures optional dispatcher collaborators
type DispatcherOption func(*Dispatcher)

// WithPublisher attaches an event publisher for accepted reports
func WithPublisher(publisher EventPublisher) DispatcherOption {
	return func(d *Dispatcher) {
		d.publisher = publisher
	}
}

// WithMirror attaches a position mirror for warm-start persistence
func WithMirror(mirror PositionMirror) DispatcherOption {
	return func(d *Dispatcher) {
		d.mirror = mirror
	}
}

// WithClock overrides the dispatcher clock
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a dispatcher over the given state components
func NewDispatcher(
	log *logger.Logger,
	store *PositionStore,
	timeline *Timeline,
	alerts *AlertEvaluator,
	registry *Registry,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		logger:   log.WithComponent("dispatcher"),
		store:    store,
		timeline: timeline,
		alerts:   alerts,
		registry: registry,
		validate: newReportValidator(),
		now:      time.Now,
		queues:   make(map[string]*observerQueue),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.mirror != nil {
		d.mirrorCh = make(chan PositionRecord, mirrorQueueSize)
		go d.runMirror()
	}
	return d
}

// Submit processes one inbound worker report: validates it, applies it
// to the position store and timeline as one atomic unit, evaluates the
// floor alert and fans the enriched event out to all observers.
// Observer delivery is best-effort; only validation failures are
// returned to the producer.
func (d *Dispatcher) Submit(ctx context.Context, report WorkerReport) error {
	if err := d.validateReport(report); err != nil {
		return err
	}

	floor := *report.Floor
	now := d.now()

	d.mu.Lock()
	previous, seen := d.store.Get(report.WorkerID)
	if !seen && d.timeline.Count(report.WorkerID) > 0 {
		d.mu.Unlock()
		d.logger.Error("Timeline entries exist for worker missing from position store",
			zap.String("workerId", report.WorkerID))
		return NewInternalError("position state corrupted for worker " + report.WorkerID)
	}

	var prevPtr *PositionRecord
	if seen {
		prevPtr = &previous
	}
	moved := hasMoved(prevPtr, report)

	record := PositionRecord{
		WorkerID:   report.WorkerID,
		WorkerName: report.WorkerName,
		Room:       report.Room,
		Floor:      floor,
		Status:     report.Status,
		UpdatedAt:  now,
	}
	d.store.Put(report.WorkerID, record)

	if moved {
		d.timeline.Append(report.WorkerID,
			formatTimelineEntry(now, report.WorkerName, report.Status, report.Room, floor))
	}
	history := d.timeline.All(report.WorkerID)
	d.enqueueMirror(record)
	d.mu.Unlock()

	alert := d.alerts.Evaluate(report.WorkerName, floor)

	event := BroadcastEvent{
		WorkerID:   report.WorkerID,
		WorkerName: report.WorkerName,
		Room:       report.Room,
		Floor:      floor,
		Status:     report.Status,
		Timeline:   history,
		Alert:      alert,
		Timestamp:  now,
	}
	if seen {
		event.Changes = d.positionChanges(previous, record)
	}

	d.broadcast(event)
	d.publishAccepted(ctx, event, moved)

	return nil
}

// Workers returns a snapshot of all current last-known positions
func (d *Dispatcher) Workers() []PositionRecord {
	return d.store.Snapshot()
}

// TimelineFor returns a copy of one worker's movement history
func (d *Dispatcher) TimelineFor(workerID string) []string {
	return d.timeline.All(workerID)
}

// validateReport checks presence and shape of all required fields
func (d *Dispatcher) validateReport(report WorkerReport) error {
	err := d.validate.Struct(report)
	if err == nil {
		return nil
	}

	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		switch fe.Tag() {
		case "required":
			return NewValidationError(fe.Field(), "is required")
		case "oneof":
			return NewValidationError(fe.Field(), "must be one of Enter, Exit, Unknown")
		default:
			return NewValidationError(fe.Field(), "is invalid")
		}
	}
	return WrapInternalError(err, "report validation failed")
}

// broadcast fans one event out through per-connection outbound queues.
// The producer only enqueues and never waits on delivery, so a slow or
// stalled observer cannot hold up Submit or the other observers.
func (d *Dispatcher) broadcast(event BroadcastEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("Failed to marshal broadcast event",
			zap.String("workerId", event.WorkerID),
			zap.Error(err))
		return
	}

	snapshot := d.registry.Snapshot()

	d.queueMu.Lock()
	defer d.queueMu.Unlock()

	// Reap queues for connections that have left the registry
	live := make(map[string]struct{}, len(snapshot))
	for _, handle := range snapshot {
		live[handle.ID()] = struct{}{}
	}
	for id, queue := range d.queues {
		if _, ok := live[id]; !ok {
			close(queue.ch)
			delete(d.queues, id)
		}
	}

	for _, handle := range snapshot {
		queue, ok := d.queues[handle.ID()]
		if !ok {
			queue = &observerQueue{
				handle: handle,
				ch:     make(chan []byte, observerQueueSize),
			}
			d.queues[handle.ID()] = queue
			go d.drainObserverQueue(queue)
		}
		d.enqueue(queue, data)
	}
}

// enqueue adds one event to a connection's queue, dropping the oldest
// pending event when the queue is full.
func (d *Dispatcher) enqueue(queue *observerQueue, data []byte) {
	for {
		select {
		case queue.ch <- data:
			return
		default:
		}
		select {
		case <-queue.ch:
			d.logger.Warn("Observer queue full, dropping oldest event",
				zap.String("connectionId", queue.handle.ID()))
		default:
		}
	}
}

// drainObserverQueue delivers one connection's queued events in order.
// A failed send unregisters the connection; its queue is reaped on the
// next broadcast pass.
func (d *Dispatcher) drainObserverQueue(queue *observerQueue) {
	for data := range queue.ch {
		if err := queue.handle.Send(data); err != nil {
			d.logger.Warn("Failed to send to observer, unregistering",
				zap.String("connectionId", queue.handle.ID()),
				zap.Error(err))
			d.registry.Unregister(queue.handle.ID())
			return
		}
	}
}

// publishAccepted notifies downstream subscribers of the accepted
// report. Failures are logged, never surfaced to the producer.
func (d *Dispatcher) publishAccepted(ctx context.Context, event BroadcastEvent, moved bool) {
	if d.publisher == nil {
		return
	}

	accepted := &ReportAcceptedEvent{
		EventID:    uuid.NewString(),
		WorkerID:   event.WorkerID,
		WorkerName: event.WorkerName,
		Room:       event.Room,
		Floor:      event.Floor,
		Status:     event.Status,
		Moved:      moved,
		Alert:      event.Alert,
		Timestamp:  event.Timestamp,
	}
	if err := d.publisher.Publish(ctx, accepted); err != nil {
		d.logger.Warn("Failed to publish report accepted event",
			zap.String("workerId", event.WorkerID),
			zap.Error(err))
	}
}

// enqueueMirror hands the latest record to the mirror writer. Called
// under the dispatcher lock so records reach the writer in store order
// and two rapid reports for one worker cannot persist out of order.
// Zero-cost when no mirror is attached; drops the oldest pending
// record on overflow since a later write refreshes the same key.
func (d *Dispatcher) enqueueMirror(record PositionRecord) {
	if d.mirrorCh == nil {
		return
	}

	for {
		select {
		case d.mirrorCh <- record:
			return
		default:
		}
		select {
		case stale := <-d.mirrorCh:
			d.logger.Warn("Mirror queue full, dropping oldest record",
				zap.String("workerId", stale.WorkerID))
		default:
		}
	}
}

// runMirror drains mirror writes sequentially
func (d *Dispatcher) runMirror() {
	for record := range d.mirrorCh {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := d.mirror.Save(ctx, record); err != nil {
			d.logger.WithWorkerID(record.WorkerID).Warn(
				"Failed to mirror position record", zap.Error(err))
		}
		cancel()
	}
}

// positionChanges builds a JSON merge patch containing only the fields
// that differ between the prior and the new record.
func (d *Dispatcher) positionChanges(previous, updated PositionRecord) map[string]interface{} {
	previousJSON, err := json.Marshal(previous)
	if err != nil {
		return nil
	}
	updatedJSON, err := json.Marshal(updated)
	if err != nil {
		return nil
	}

	mergePatch, err := jsonpatch.CreateMergePatch(previousJSON, updatedJSON)
	if err != nil {
		d.logger.Debug("Failed to create position merge patch",
			zap.String("workerId", updated.WorkerID),
			zap.Error(err))
		return nil
	}

	var changes map[string]interface{}
	if err := json.Unmarshal(mergePatch, &changes); err != nil {
		return nil
	}
	delete(changes, "updatedAt")
	if len(changes) == 0 {
		return nil
	}
	return changes
}
