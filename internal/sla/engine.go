package sla

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"sla-monitor/internal/logging"
	"sla-monitor/internal/models"
)

// ErrCycleInProgress is returned when a cycle is requested while another
// one is still running. Callers treat it as "try again later".
var ErrCycleInProgress = errors.New("monitoring cycle already in progress")

// CycleResult summarizes one monitoring pass.
type CycleResult struct {
	TasksMonitored int                `json:"tasks_monitored"`
	ViolationCount int                `json:"violations"`
	Violations     []models.Violation `json:"details"`
}

// Engine drives monitoring cycles: fetch the active-task snapshot, evaluate
// every task against every enabled rule, record each violation, and run its
// rule's actions. Construct with NewEngine and inject where needed; the
// Start/Stop pair owns the optional interval mode.
type Engine struct {
	store      Store
	registry   *Registry
	dispatcher *Dispatcher
	publisher  Publisher
	logger     *logging.Logger

	inProgress atomic.Bool
	started    atomic.Bool
	stopOnce   sync.Once
	stop       chan struct{}
	done       chan struct{}
}

func NewEngine(store Store, registry *Registry, dispatcher *Dispatcher, publisher Publisher, logger *logging.Logger) *Engine {
	return &Engine{
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Registry exposes the engine's rule registry to the API layer.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// RunCycle performs one monitoring pass. A snapshot fetch error aborts the
// whole cycle; per-violation record and action errors are logged and
// isolated, and the violation still counts as detected. Violations are not
// deduplicated across cycles: a task that keeps matching is re-recorded
// every pass, by design of the audit trail.
//
// At most one cycle runs at a time; overlapping requests get
// ErrCycleInProgress.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	if !e.inProgress.CompareAndSwap(false, true) {
		e.logger.Warnf("Monitoring cycle requested while one is running, skipping")
		return CycleResult{}, ErrCycleInProgress
	}
	defer e.inProgress.Store(false)

	startedAt := time.Now()

	tasks, err := e.store.FetchActiveTasks(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("failed to fetch task snapshot: %w", err)
	}

	rules := e.registry.Enabled()
	result := CycleResult{TasksMonitored: len(tasks)}

	for _, task := range tasks {
		violations := Evaluate(task, rules)
		for _, v := range violations {
			e.process(ctx, v)
		}
		result.Violations = append(result.Violations, violations...)
	}
	result.ViolationCount = len(result.Violations)

	e.logger.Infof("Monitoring cycle done: %d tasks, %d violations, took %v",
		result.TasksMonitored, result.ViolationCount, time.Since(startedAt))
	return result, nil
}

// process records one violation and runs its rule's actions. The two steps
// are independent best-effort: a failed record never blocks the actions.
func (e *Engine) process(ctx context.Context, v models.Violation) {
	if err := e.store.InsertViolation(ctx, v); err != nil {
		e.logger.Errorf("Recording violation for task %d (rule %s) failed: %v", v.TaskID, v.RuleID, err)
	}

	rule, ok := e.registry.Get(v.RuleID)
	if !ok {
		e.logger.Warnf("Rule %s vanished before dispatch for task %d", v.RuleID, v.TaskID)
		return
	}
	e.dispatcher.Dispatch(ctx, v, rule.Actions)

	if e.publisher != nil {
		e.publisher.PublishViolation(v)
	}
}

// Start launches automatic mode: the first cycle fires immediately, then
// one per interval. A failing cycle is logged and the timer keeps going.
func (e *Engine) Start(interval time.Duration) {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(e.done)
		e.logger.Infof("SLA monitoring started, interval %v", interval)

		e.runLogged()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-e.stop:
				e.logger.Infof("SLA monitoring stopped")
				return
			case <-ticker.C:
				e.runLogged()
			}
		}
	}()
}

func (e *Engine) runLogged() {
	if _, err := e.RunCycle(context.Background()); err != nil && !errors.Is(err, ErrCycleInProgress) {
		e.logger.Errorf("Monitoring cycle failed: %v", err)
	}
}

// Stop halts automatic mode and waits for the loop to exit. Safe to call
// when Start was never used.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
	if e.started.Load() {
		<-e.done
	}
}
