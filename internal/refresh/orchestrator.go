// Package refresh implements the deployment-refresh pipeline: verify the
// webhook signature, pull every configured repository, restart the
// configured Docker services, and aggregate per-target outcomes.
package refresh

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/command"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/config"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/log"
)

// ErrSignature is returned when signature verification rejects a payload.
// No repository or service operation runs in that case.
var ErrSignature = errors.New("signature verification failed")

// ServiceBatchName identifies the aggregate restart outcome in results.
const ServiceBatchName = "docker-services"

// Verifier authenticates a raw webhook payload against its signature header.
type Verifier interface {
	Verify(payload []byte, signature string) bool
}

// Orchestrator runs one verify → sync → restart cycle per webhook call.
// Runs are serialized by a weighted semaphore so overlapping deliveries
// cannot race on the same checkouts or containers.
type Orchestrator struct {
	cfg       *config.Config
	verifier  Verifier
	syncer    *Syncer
	restarter *Restarter
	sem       *semaphore.Weighted
	logger    *slog.Logger
}

// New creates an Orchestrator over the given configuration.
func New(cfg *config.Config, verifier Verifier, runner command.Runner) *Orchestrator {
	logger := log.WithComponent("refresh")
	return &Orchestrator{
		cfg:       cfg,
		verifier:  verifier,
		syncer:    NewSyncer(runner, logger),
		restarter: NewRestarter(runner, logger),
		sem:       semaphore.NewWeighted(1),
		logger:    logger,
	}
}

// Handle executes one orchestration run. It verifies the signature first
// and performs no side effects on rejection. Repositories are pulled
// strictly in configured order, each attempted regardless of earlier
// failures; the service batch is restarted once afterwards. Every run
// starts from a clean slate using only the immutable configuration.
func (o *Orchestrator) Handle(ctx context.Context, payload []byte, signature string) (*Result, error) {
	if !o.verifier.Verify(payload, signature) {
		return nil, ErrSignature
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer o.sem.Release(1)

	runID := uuid.NewString()
	logger := o.logger.With(slog.String("run_id", runID))
	logger.Info("refresh run started",
		"repositories", len(o.cfg.Repositories),
		"services", len(o.cfg.Services),
	)

	result := &Result{
		Success:      true,
		Repositories: make([]Outcome, 0, len(o.cfg.Repositories)),
		Services:     make([]Outcome, 0, 1),
	}

	for _, repo := range o.cfg.Repositories {
		ok := o.syncer.Sync(ctx, repo)
		result.Repositories = append(result.Repositories, Outcome{Name: repo.Name, Success: ok})
		if !ok {
			result.Success = false
		}
	}

	if len(o.cfg.Services) > 0 {
		ok := o.restarter.Restart(ctx, o.cfg.Services)
		result.Services = append(result.Services, Outcome{Name: ServiceBatchName, Success: ok})
		if !ok {
			result.Success = false
		}
	}

	if result.Success {
		logger.Info("refresh run completed")
	} else {
		logger.Warn("refresh run completed with failures")
	}

	return result, nil
}
