package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"deathbydinner-backend/internal/models"
	"deathbydinner-backend/internal/services"
)

const (
	maxAttempts    = 3
	publishTimeout = 2 * time.Second
)

var (
	// ErrQueueFull is returned by Publish when the pool cannot take more events.
	ErrQueueFull = errors.New("relay event queue is full")
	// ErrPoolStopped is returned by Publish once Stop has been called.
	ErrPoolStopped = errors.New("relay event pool is stopped")
)

// Pool publishes relay events in the background so a slow or unreachable
// broker never holds up a chat response. It implements services.EventPublisher.
type Pool struct {
	publisher   services.EventPublisher
	jobs        chan models.RelayEvent
	workerCount int
	backoff     time.Duration
	logger      zerolog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPool(publisher services.EventPublisher, workerCount, queueSize int, logger zerolog.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		publisher:   publisher,
		jobs:        make(chan models.RelayEvent, queueSize),
		workerCount: workerCount,
		backoff:     time.Second,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info().Int("workers", p.workerCount).Msg("Started relay event workers")
}

// Stop lets queued events drain, then waits for the workers to exit.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	p.wg.Wait()
}

// Publish enqueues event without blocking. The context is not used for the
// eventual send, which outlives the request.
func (p *Pool) Publish(_ context.Context, event models.RelayEvent) error {
	select {
	case <-p.stopChan:
		return ErrPoolStopped
	default:
	}

	select {
	case p.jobs <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.jobs:
			p.process(id, event)
		case <-p.stopChan:
			for {
				select {
				case event := <-p.jobs:
					p.process(id, event)
				default:
					p.logger.Debug().Int("worker", id).Msg("Relay event worker shutting down")
					return
				}
			}
		}
	}
}

func (p *Pool) process(id int, event models.RelayEvent) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err = p.publisher.Publish(ctx, event)
		cancel()
		if err == nil {
			return
		}

		if attempt == maxAttempts {
			break
		}
		p.logger.Debug().Err(err).Int("worker", id).Int("attempt", attempt).
			Str("request_id", event.RequestID).Msg("relay event publish failed, retrying")

		select {
		case <-time.After(time.Duration(1<<uint(attempt-1)) * p.backoff):
		case <-p.stopChan:
			// Shutting down: retry without waiting.
		}
	}

	p.logger.Warn().Err(err).Int("worker", id).Str("request_id", event.RequestID).
		Msg("relay event dropped after retries")
}
