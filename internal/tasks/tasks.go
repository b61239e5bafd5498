package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/roster/internal/notify"
	"github.com/desertthunder/roster/internal/shared"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// Job is one notification addressed to one person.
type Job struct {
	Recipient string // Display name, for progress and reporting
	Reason    Reason
	Message   notify.Message
}

// JobResult is the outcome of delivering a single [Job].
type JobResult struct {
	Job     Job
	Receipt notify.Receipt
	Error   error
}

// BroadcastResult aggregates a [Broadcaster.Run].
type BroadcastResult struct {
	Total     int
	Delivered int
	Failed    int
	Results   []JobResult
}

// Failures returns the results that did not deliver.
func (r *BroadcastResult) Failures() []JobResult {
	var out []JobResult
	for _, res := range r.Results {
		if res.Error != nil {
			out = append(out, res)
		}
	}
	return out
}

// BroadcastOpts configures the worker pool.
type BroadcastOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Deliveries per second (default: 5)
}

// Broadcaster delivers jobs concurrently through a gateway.
type Broadcaster struct {
	gateway notify.Gateway
	logger  *log.Logger
}

// NewBroadcaster creates a [Broadcaster] for gw.
func NewBroadcaster(gw notify.Gateway, logger *log.Logger) *Broadcaster {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Broadcaster{gateway: gw, logger: shared.WithLogger(logger, "component", "broadcast")}
}

// Run delivers every job with a rate-limited worker pool.
//
// Per-job failures are recorded in the result. Run returns an error only when no
// gateway is configured or ctx ends before every job was handed out.
func (b *Broadcaster) Run(ctx context.Context, prog chan<- ProgressUpdate, jobs []Job, opts BroadcastOpts) (*BroadcastResult, error) {
	if b.gateway == nil {
		return nil, fmt.Errorf("%w: notification gateway not configured", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	result := &BroadcastResult{
		Total:   len(jobs),
		Results: make([]JobResult, 0, len(jobs)),
	}
	if len(jobs) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	queue := make(chan Job, len(jobs))
	results := make(chan JobResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go b.worker(ctx, &wg, limiter, queue, results)
	}

	sendProgress(prog, deliverStartUpdate(len(jobs)))

	var dispatchErr error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}
		queue <- job
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error != nil {
			result.Failed++
			b.logger.Warn("reminder not delivered", "recipient", res.Job.Recipient, "error", res.Error)
			sendProgress(prog, deliverFailedUpdate(completed, len(jobs), res.Job, res.Error))
			continue
		}
		result.Delivered++
		sendProgress(prog, deliveredUpdate(completed, len(jobs), res.Job))
	}

	if dispatchErr != nil {
		return result, fmt.Errorf("broadcast interrupted: %w", dispatchErr)
	}
	return result, nil
}

func (b *Broadcaster) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan Job,
	results chan<- JobResult,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- JobResult{Job: job, Error: err}
			continue
		}
		receipt, err := b.gateway.Deliver(ctx, job.Message)
		results <- JobResult{Job: job, Receipt: receipt, Error: err}
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
