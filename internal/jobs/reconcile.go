package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"clinic-referrals/internal/platform/logger"
)

// Reconciler re-evalúa recompensas de todos los clientes.
// rewards.Service lo implementa.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// RewardsReconcile corre ReconcileAll con una expresión cron (p.ej. "@hourly").
// Nunca corre dos pasadas a la vez.
type RewardsReconcile struct {
	cron    *cron.Cron
	rec     Reconciler
	log     logger.Logger
	timeout time.Duration

	running sync.Mutex
}

func NewRewardsReconcile(spec string, rec Reconciler, log logger.Logger) (*RewardsReconcile, error) {
	if log == nil {
		log = logger.Nop()
	}
	j := &RewardsReconcile{
		cron:    cron.New(),
		rec:     rec,
		log:     log.With(map[string]any{"job": "rewards_reconcile"}),
		timeout: 5 * time.Minute,
	}
	if _, err := j.cron.AddFunc(spec, func() { j.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return j, nil
}

func (j *RewardsReconcile) Start() {
	j.cron.Start()
	j.log.Info("job scheduled", nil)
}

// Stop deja de programar pasadas y espera a la que esté corriendo.
func (j *RewardsReconcile) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.log.Warn("job stop timed out", map[string]any{"err": ctx.Err()})
	}
}

// RunOnce ejecuta una pasada. Si ya hay una en curso, no hace nada y devuelve false.
func (j *RewardsReconcile) RunOnce(ctx context.Context) bool {
	if !j.running.TryLock() {
		j.log.Warn("previous run still in progress, skipping", nil)
		return false
	}
	defer j.running.Unlock()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	n, err := j.rec.ReconcileAll(ctx)
	fields := map[string]any{
		"granted":     n,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["err"] = err
		j.log.Error("reconcile finished with errors", fields)
		return true
	}
	j.log.Info("reconcile finished", fields)
	return true
}
