package refresh

import (
	"context"
	"log/slog"
	"os"

	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/command"
	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/config"
)

// Syncer refreshes one configured git checkout by pulling its branch.
type Syncer struct {
	runner command.Runner
	logger *slog.Logger
}

// NewSyncer creates a Syncer backed by the given command runner.
func NewSyncer(runner command.Runner, logger *slog.Logger) *Syncer {
	return &Syncer{runner: runner, logger: logger}
}

// Sync pulls the latest changes for target. The checkout directory must
// already exist; a missing path fails without running any command. Command
// output is logged but never surfaced to the webhook caller.
func (s *Syncer) Sync(ctx context.Context, target config.RepositoryTarget) bool {
	info, err := os.Stat(target.Path)
	if err != nil || !info.IsDir() {
		s.logger.Error("repository path missing",
			"repository", target.Name,
			"path", target.Path,
		)
		return false
	}

	res, err := s.runner.Run(ctx, target.Path, "git", "pull", "origin", target.Branch)
	if err != nil {
		s.logger.Error("git pull failed to run",
			"repository", target.Name,
			"branch", target.Branch,
			"error", err,
		)
		return false
	}

	if !res.Success() {
		s.logger.Error("git pull failed",
			"repository", target.Name,
			"branch", target.Branch,
			"exit_code", res.ExitCode,
			"stderr", res.Stderr,
		)
		return false
	}

	s.logger.Info("repository refreshed",
		"repository", target.Name,
		"branch", target.Branch,
	)
	return true
}
