package analyze

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sourceweaver/sourceweaver/internal/model"
)

// defaultBulkConcurrency caps script analyses in flight during a bulk
// request.
const defaultBulkConcurrency = 5

// Status is the lifecycle state of a script analysis task.
type Status int

const (
	// StatusPending means the task is queued but not yet started.
	StatusPending Status = iota

	// StatusProcessing means the script is running.
	StatusProcessing

	// StatusSuccess means the script finished and produced valid output.
	StatusSuccess

	// StatusError means the script failed, timed out, or was cancelled.
	StatusError
)

// String returns the report-facing name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Response is the outcome of one script analysis.
type Response struct {
	// Status is the final state, or the current state for a task that
	// is still running.
	Status Status `json:"status"`

	// Data is the raw JSON document the script produced. Nil unless
	// Status is StatusSuccess.
	Data json.RawMessage `json:"data,omitempty"`

	// Error describes the failure for StatusError responses.
	Error string `json:"error,omitempty"`

	// Elapsed is the wall clock spent so far, or total for finished
	// analyses.
	Elapsed time.Duration `json:"elapsed"`

	// TaskID identifies the async task this response belongs to;
	// empty for synchronous analyses.
	TaskID string `json:"task_id,omitempty"`
}

// Manager dispatches script analyses and tracks asynchronous runs.
// Create with NewManager; Close cancels anything still in flight.
type Manager struct {
	runner Runner
	logger *slog.Logger
	now    func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	tasks   map[string]*task
	started time.Time
	total   int
	success int
	failed  int
}

type task struct {
	status Status
	start  time.Time
	result *Response
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets a custom logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// withNow replaces the clock. Intended for tests.
func withNow(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager over the given runner.
func NewManager(runner Runner, opts ...ManagerOption) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		runner:  runner,
		logger:  slog.Default(),
		now:     time.Now,
		baseCtx: ctx,
		cancel:  cancel,
		tasks:   make(map[string]*task),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.started = m.now()
	return m
}

// Close cancels in-flight analyses and waits for them to settle.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// Analyze runs one script analysis synchronously. Failures come back
// inside the response, never as a panic or partial result.
func (m *Manager) Analyze(ctx context.Context, target model.Target) *Response {
	start := m.now()
	m.mu.Lock()
	m.total++
	m.mu.Unlock()

	m.logger.Info("starting analysis", "target", target.String())

	data, err := m.runner.Run(ctx, target)
	resp := &Response{Elapsed: m.now().Sub(start)}
	if err != nil {
		resp.Status = StatusError
		resp.Error = err.Error()
		m.mu.Lock()
		m.failed++
		m.mu.Unlock()
		m.logger.Warn("analysis failed", "target", target.String(), "error", err)
		return resp
	}

	resp.Status = StatusSuccess
	resp.Data = data
	m.mu.Lock()
	m.success++
	m.mu.Unlock()
	return resp
}

// StartAsync begins a background analysis and returns its task id.
// The analysis runs until completion or until Close cancels it.
func (m *Manager) StartAsync(target model.Target) string {
	id := uuid.NewString()
	t := &task{status: StatusPending, start: m.now()}

	m.mu.Lock()
	m.tasks[id] = t
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.mu.Lock()
		t.status = StatusProcessing
		m.mu.Unlock()

		resp := m.Analyze(m.baseCtx, target)
		resp.TaskID = id

		m.mu.Lock()
		t.result = resp
		t.status = resp.Status
		m.mu.Unlock()
	}()
	return id
}

// Result returns the state of an async task. A finished task is
// evicted on first retrieval; unknown or already-collected ids return
// ok=false.
func (m *Manager) Result(id string) (*Response, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, false
	}

	switch t.status {
	case StatusSuccess, StatusError:
		delete(m.tasks, id)
		return t.result, true
	default:
		return &Response{
			Status:  t.status,
			Elapsed: m.now().Sub(t.start),
			TaskID:  id,
		}, true
	}
}

// AnalyzeBulk runs analyses for several targets with bounded
// concurrency. The returned slice is positional: responses[i] belongs
// to targets[i], and failures are recorded per response.
func (m *Manager) AnalyzeBulk(ctx context.Context, targets []model.Target, maxConcurrent int) []*Response {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultBulkConcurrency
	}

	responses := make([]*Response, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			responses[i] = m.Analyze(gctx, target)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	return responses
}

// Stats is a snapshot of manager activity.
type Stats struct {
	TotalRequests int `json:"total_requests"`

	// Successful and Failed count finished analyses by outcome.
	Successful int `json:"successful_analyses"`
	Failed     int `json:"failed_analyses"`

	// SuccessRate is Successful over TotalRequests as a percentage;
	// zero when nothing ran yet.
	SuccessRate float64 `json:"success_rate"`

	// ActiveTasks counts async tasks not yet collected.
	ActiveTasks int `json:"active_tasks"`

	Uptime time.Duration `json:"uptime"`
}

// Stats returns a snapshot of manager activity.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		TotalRequests: m.total,
		Successful:    m.success,
		Failed:        m.failed,
		ActiveTasks:   len(m.tasks),
		Uptime:        m.now().Sub(m.started),
	}
	if m.total > 0 {
		s.SuccessRate = float64(m.success) / float64(m.total) * 100
	}
	return s
}
