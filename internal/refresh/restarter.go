package refresh

import (
	"context"
	"log/slog"

	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/command"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/config"
)

// Restarter restarts the configured Docker services one at a time.
type Restarter struct {
	runner command.Runner
	logger *slog.Logger
}

// NewRestarter creates a Restarter backed by the given command runner.
func NewRestarter(runner command.Runner, logger *slog.Logger) *Restarter {
	return &Restarter{runner: runner, logger: logger}
}

// Restart restarts each service in order and reports a single aggregate
// flag for the whole batch. The first failure aborts the remaining
// services. An empty batch succeeds immediately.
//
// Note the asymmetry with repository syncing, which always attempts every
// target: a failed restart stops the batch. Kept for compatibility with
// the established contract; see DESIGN.md.
func (r *Restarter) Restart(ctx context.Context, targets []config.ServiceTarget) bool {
	if len(targets) == 0 {
		return true
	}

	for _, target := range targets {
		res, err := r.runner.Run(ctx, "", "docker", "restart", target.Name)
		if err != nil {
			r.logger.Error("docker restart failed to run",
				"service", target.Name,
				"error", err,
			)
			return false
		}

		if !res.Success() {
			r.logger.Error("docker restart failed",
				"service", target.Name,
				"exit_code", res.ExitCode,
				"stderr", res.Stderr,
			)
			return false
		}

		r.logger.Info("service restarted", "service", target.Name)
	}

	return true
}
