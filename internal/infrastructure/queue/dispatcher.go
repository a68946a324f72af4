package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/grandnode/mobile-api/internal/api/metrics"
	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	listenerTimeout = 5 * time.Second
)

// Deduper reports whether an event is seen for the first time.
type Deduper interface {
	MarkFirst(ctx context.Context, event domain.CustomerRegistered) (bool, error)
}

// Dispatcher fans CustomerRegistered events out to listeners on a fixed set of
// workers. Events are sharded by customer GUID so that one customer's events
// are handled in order. It implements ports.EventPublisher.
type Dispatcher struct {
	workers   []chan domain.CustomerRegistered
	listeners []ports.RegistrationListener
	dedup     Deduper
	log       zerolog.Logger
	wg        sync.WaitGroup
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. dedup may be nil.
func NewDispatcher(numWorkers int, dedup Deduper, log zerolog.Logger, listeners ...ports.RegistrationListener) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.CustomerRegistered, numWorkers),
		listeners: listeners,
		dedup:     dedup,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.CustomerRegistered, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have returned.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() { d.wg.Wait() }

// PublishCustomerRegistered never blocks: when the worker's buffer is full the
// event is dropped and counted.
func (d *Dispatcher) PublishCustomerRegistered(_ context.Context, event domain.CustomerRegistered) {
	idx := d.shardIndex(event.CustomerGUID.String())
	select {
	case d.workers[idx] <- event:
		metrics.RegistrationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.RegistrationEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("customer_guid", event.CustomerGUID.String()).
			Int("worker_id", idx).
			Msg("registration event dropped, queue full")
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.CustomerRegistered) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			metrics.RegistrationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, event domain.CustomerRegistered) {
	log := d.log.With().
		Str("customer_guid", event.CustomerGUID.String()).
		Int("worker_id", worker).
		Logger()

	if d.dedup != nil {
		first, err := d.dedup.MarkFirst(ctx, event)
		if err != nil {
			log.Warn().Err(err).Msg("dedup check failed, delivering anyway")
		} else if !first {
			metrics.RegistrationEventsTotal.WithLabelValues("duplicate").Inc()
			return
		}
	}

	for _, l := range d.listeners {
		start := time.Now()
		lctx, cancel := context.WithTimeout(ctx, listenerTimeout)
		err := l.HandleCustomerRegistered(lctx, event)
		cancel()
		metrics.ListenerDuration.WithLabelValues(l.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.RegistrationEventsTotal.WithLabelValues("failed").Inc()
			log.Error().Err(err).Str("listener", l.Name()).Msg("registration listener failed")
			continue
		}
		metrics.RegistrationEventsTotal.WithLabelValues("delivered").Inc()
	}
}

// LogListener records each registration in the service log.
type LogListener struct {
	log zerolog.Logger
}

func NewLogListener(log zerolog.Logger) *LogListener { return &LogListener{log: log} }

func (l *LogListener) Name() string { return "log" }

func (l *LogListener) HandleCustomerRegistered(_ context.Context, event domain.CustomerRegistered) error {
	l.log.Info().
		Str("customer_guid", event.CustomerGUID.String()).
		Bool("upgraded_from_guest", event.UpgradedFromGuest).
		Time("occurred_at", event.OccurredAt).
		Msg("customer registered")
	return nil
}
