package analyze

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/model"
)

// blockingRunner holds every run until release is closed.
type blockingRunner struct {
	release chan struct{}
	out     []byte
	err     error
}

func (r *blockingRunner) Run(ctx context.Context, _ model.Target) ([]byte, error) {
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.out, r.err
}

// waitFinal polls an async task until it leaves the running states.
func waitFinal(t *testing.T, m *Manager, id string) *Response {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, ok := m.Result(id)
		if !ok {
			t.Fatal("task vanished before completion")
		}
		if resp.Status == StatusSuccess || resp.Status == StatusError {
			return resp
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task did not finish in time")
	return nil
}

func TestManagerAnalyze(t *testing.T) {
	t.Parallel()

	runner := RunnerFunc(func(_ context.Context, target model.Target) ([]byte, error) {
		if target.Kind == model.TargetURL {
			return nil, errors.New("scan backend down")
		}
		return []byte(`{"verdict":"clean"}`), nil
	})
	m := NewManager(runner, WithManagerLogger(discardLogger()))
	defer m.Close()

	ok := m.Analyze(context.Background(), mustTarget(t, model.TargetIP, "192.0.2.10"))
	if ok.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success", ok.Status)
	}
	if string(ok.Data) != `{"verdict":"clean"}` {
		t.Errorf("Data = %s", ok.Data)
	}

	bad := m.Analyze(context.Background(), mustTarget(t, model.TargetURL, "https://example.com/x"))
	if bad.Status != StatusError {
		t.Fatalf("Status = %v, want error", bad.Status)
	}
	if !strings.Contains(bad.Error, "scan backend down") {
		t.Errorf("Error = %q", bad.Error)
	}
	if bad.Data != nil {
		t.Error("failed analysis must not carry data")
	}
}

func TestManagerStats(t *testing.T) {
	t.Parallel()

	runner := RunnerFunc(func(_ context.Context, target model.Target) ([]byte, error) {
		if target.Kind == model.TargetURL {
			return nil, errors.New("boom")
		}
		return []byte(`{}`), nil
	})
	m := NewManager(runner, WithManagerLogger(discardLogger()))
	defer m.Close()

	ctx := context.Background()
	m.Analyze(ctx, mustTarget(t, model.TargetIP, "192.0.2.10"))
	m.Analyze(ctx, mustTarget(t, model.TargetDomain, "example.com"))
	m.Analyze(ctx, mustTarget(t, model.TargetURL, "https://example.com/x"))

	stats := m.Stats()
	if stats.TotalRequests != 3 || stats.Successful != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 3 total, 2 success, 1 failed", stats)
	}
	if math.Abs(stats.SuccessRate-200.0/3) > 0.01 {
		t.Errorf("SuccessRate = %f, want ~66.67", stats.SuccessRate)
	}
}

func TestManagerStatsEmpty(t *testing.T) {
	t.Parallel()

	m := NewManager(RunnerFunc(func(context.Context, model.Target) ([]byte, error) {
		return []byte(`{}`), nil
	}))
	defer m.Close()

	if rate := m.Stats().SuccessRate; rate != 0 {
		t.Errorf("SuccessRate with no requests = %f, want 0", rate)
	}
}

func TestManagerStatsUptime(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	m := NewManager(RunnerFunc(func(context.Context, model.Target) ([]byte, error) {
		return []byte(`{}`), nil
	}), withNow(clock))
	defer m.Close()

	mu.Lock()
	now = now.Add(90 * time.Second)
	mu.Unlock()

	if got := m.Stats().Uptime; got != 90*time.Second {
		t.Errorf("Uptime = %v, want 90s", got)
	}
}

func TestManagerAsyncLifecycle(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{release: make(chan struct{}), out: []byte(`{"done":true}`)}
	m := NewManager(runner, WithManagerLogger(discardLogger()))
	defer m.Close()

	id := m.StartAsync(mustTarget(t, model.TargetIP, "192.0.2.10"))
	if id == "" {
		t.Fatal("StartAsync() returned empty id")
	}

	resp, ok := m.Result(id)
	if !ok {
		t.Fatal("running task must be visible")
	}
	if resp.Status == StatusSuccess || resp.Status == StatusError {
		t.Fatalf("Status = %v before release", resp.Status)
	}
	if resp.TaskID != id {
		t.Errorf("TaskID = %q, want %q", resp.TaskID, id)
	}

	close(runner.release)
	final := waitFinal(t, m, id)
	if final.Status != StatusSuccess {
		t.Fatalf("final status = %v, want success", final.Status)
	}
	if string(final.Data) != `{"done":true}` {
		t.Errorf("Data = %s", final.Data)
	}

	// Eviction: a collected task is gone.
	if _, ok := m.Result(id); ok {
		t.Error("finished task must be evicted after first retrieval")
	}
}

func TestManagerResultUnknownID(t *testing.T) {
	t.Parallel()

	m := NewManager(RunnerFunc(func(context.Context, model.Target) ([]byte, error) {
		return []byte(`{}`), nil
	}))
	defer m.Close()

	if _, ok := m.Result("no-such-task"); ok {
		t.Error("unknown id must return ok=false")
	}
}

func TestManagerCloseCancelsInFlight(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{release: make(chan struct{})}
	m := NewManager(runner, WithManagerLogger(discardLogger()))

	id := m.StartAsync(mustTarget(t, model.TargetIP, "192.0.2.10"))
	m.Close()

	resp, ok := m.Result(id)
	if !ok {
		t.Fatal("cancelled task must still be collectable")
	}
	if resp.Status != StatusError {
		t.Fatalf("Status = %v, want error after shutdown", resp.Status)
	}
	if !strings.Contains(resp.Error, context.Canceled.Error()) {
		t.Errorf("Error = %q, want context cancellation", resp.Error)
	}
}

func TestManagerAnalyzeBulk(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	inFlight, peak := 0, 0

	runner := RunnerFunc(func(_ context.Context, target model.Target) ([]byte, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()

		if target.Kind == model.TargetURL {
			return nil, errors.New("refused")
		}
		return []byte(`{}`), nil
	})
	m := NewManager(runner, WithManagerLogger(discardLogger()))
	defer m.Close()

	targets := []model.Target{
		mustTarget(t, model.TargetIP, "192.0.2.10"),
		mustTarget(t, model.TargetURL, "https://example.com/x"),
		mustTarget(t, model.TargetDomain, "example.com"),
		mustTarget(t, model.TargetIP, "192.0.2.11"),
	}
	responses := m.AnalyzeBulk(context.Background(), targets, 2)

	if len(responses) != len(targets) {
		t.Fatalf("len(responses) = %d, want %d", len(responses), len(targets))
	}
	if responses[1].Status != StatusError {
		t.Errorf("responses[1].Status = %v, want error", responses[1].Status)
	}
	for _, i := range []int{0, 2, 3} {
		if responses[i].Status != StatusSuccess {
			t.Errorf("responses[%d].Status = %v, want success", i, responses[i].Status)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak)
	}
}
