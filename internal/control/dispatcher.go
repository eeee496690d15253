package control

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// Dispatcher routes inbound broker messages to class handlers through a
// fixed pool of shard workers. Messages for the same bin always land on
// the same shard, so per-bin processing is strictly ordered while
// different bins proceed in parallel.
type Dispatcher struct {
	logger   *logging.Logger
	handlers map[string]Handler

	shards  []chan envelope
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	started bool
}

// Handler processes one inbound message for a bin. The subclass is the
// topic segment after the class ("level" for data topics), empty when the
// topic has exactly three segments.
type Handler func(ctx context.Context, binID, subclass string, payload []byte) error

// envelope is one parsed inbound message queued for a shard worker.
type envelope struct {
	binID    string
	class    string
	subclass string
	payload  []byte
}

// Sharding parameters. Eight workers with a short queue each: deep enough
// to absorb telemetry bursts, shallow enough that a stuck store surfaces
// as drops rather than unbounded memory growth.
const (
	numShards      = 8
	shardQueueSize = 64
)

// NewDispatcher creates a dispatcher with no handlers registered.
func NewDispatcher(logger *logging.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   logger.With("component", "dispatcher"),
		handlers: make(map[string]Handler),
	}
}

// Handle registers the handler for a message class ("data", "rfid_check",
// "status"). Must be called before Start.
func (d *Dispatcher) Handle(class string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[class] = h
}

// Start launches the shard workers.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.shards = make([]chan envelope, numShards)
	for i := range d.shards {
		d.shards[i] = make(chan envelope, shardQueueSize)
		d.wg.Add(1)
		go d.worker(i, d.shards[i])
	}
	d.started = true

	d.logger.Info("dispatcher started", "shards", numShards, "queue_size", shardQueueSize)
}

// Stop cancels the workers and waits for in-flight handlers to finish.
// Queued but unprocessed messages are discarded.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	d.cancel()
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

// Route is the broker message handler. It parses the topic, selects the
// shard for the bin, and enqueues the message. Malformed topics and full
// queues are logged and dropped; Route never blocks the broker's
// delivery goroutine.
func (d *Dispatcher) Route(topic string, payload []byte) error {
	binID, class, subclass, err := ParseTopic(topic)
	if err != nil {
		d.logger.Warn("dropping message on malformed topic", "topic", topic, "error", err)
		return nil
	}

	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return ErrNotStarted
	}
	if _, ok := d.handlers[class]; !ok {
		d.mu.Unlock()
		d.logger.Warn("dropping message for unrecognised class",
			"topic", topic, "class", class, "error", ErrUnknownClass)
		return nil
	}
	shard := d.shards[shardFor(binID)]
	ctx := d.ctx
	d.mu.Unlock()

	// Payload bytes are owned by the broker library; copy before queuing.
	body := make([]byte, len(payload))
	copy(body, payload)

	env := envelope{binID: binID, class: class, subclass: subclass, payload: body}
	select {
	case shard <- env:
		return nil
	case <-ctx.Done():
		return nil
	default:
		d.logger.Warn("dropping message on full shard queue",
			"bin_id", binID, "class", class, "shard", shardFor(binID))
		return nil
	}
}

// worker drains one shard, invoking the registered class handler for
// each message in arrival order.
func (d *Dispatcher) worker(id int, shard <-chan envelope) {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case env := <-shard:
			d.mu.Lock()
			h, ok := d.handlers[env.class]
			d.mu.Unlock()
			if !ok {
				d.logger.Warn("no handler for message class",
					"class", env.class, "bin_id", env.binID)
				continue
			}

			if err := h(d.ctx, env.binID, env.subclass, env.payload); err != nil {
				d.logger.Error("handler failed",
					"class", env.class, "bin_id", env.binID, "shard", id, "error", err)
			}
		}
	}
}

// ParseTopic splits a Smart Bin topic into its bin ID, message class,
// and optional subclass.
//
// Topics follow smartbin/{binId}/{class}[/{subclass}]. Anything shorter
// than three segments, or outside the smartbin namespace, is malformed.
//
// Parameters:
//   - topic: Full topic string as delivered by the broker
//
// Returns:
//   - binID: Second topic segment
//   - class: Third topic segment
//   - subclass: Remaining segments joined with "/", empty if none
//   - error: ErrMalformedTopic if the shape is wrong
func ParseTopic(topic string) (binID, class, subclass string, err error) {
	segments := strings.Split(topic, "/")
	if len(segments) < 3 {
		return "", "", "", fmt.Errorf("%w: %q has %d segments, want at least 3",
			ErrMalformedTopic, topic, len(segments))
	}
	if segments[0] != mqtt.TopicNamespace {
		return "", "", "", fmt.Errorf("%w: %q is outside the %s namespace",
			ErrMalformedTopic, topic, mqtt.TopicNamespace)
	}
	if segments[1] == "" || segments[2] == "" {
		return "", "", "", fmt.Errorf("%w: %q has an empty segment", ErrMalformedTopic, topic)
	}

	binID = segments[1]
	class = segments[2]
	if len(segments) > 3 {
		subclass = strings.Join(segments[3:], "/")
	}
	return binID, class, subclass, nil
}

// shardFor maps a bin ID to a shard index with FNV-1a.
func shardFor(binID string) int {
	h := fnv.New32a()
	h.Write([]byte(binID)) //nolint:errcheck // fnv never errors
	return int(h.Sum32() % numShards)
}
