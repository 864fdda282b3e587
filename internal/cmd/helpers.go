package cmd

import (
	"fmt"
	"os"

	"github.com/wardenlabs/warden/internal/config"
	"github.com/wardenlabs/warden/internal/forge"
	"github.com/wardenlabs/warden/internal/gate"
	"github.com/wardenlabs/warden/internal/git"
	"github.com/wardenlabs/warden/internal/lifecycle"
	"github.com/wardenlabs/warden/internal/tracker"
	"github.com/wardenlabs/warden/internal/workspace"
)

// loadConfig reads the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// repoGit returns a git client bound to the top level of the repository
// containing the current directory.
func repoGit() (*git.Git, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	top, err := git.NewGit(cwd).TopLevel()
	if err != nil {
		return nil, fmt.Errorf("not inside a git repository: %w", err)
	}
	return git.NewGit(top), nil
}

func newEvaluator(cfg *config.Config, repo *git.Git, store *workspace.Store) *gate.Evaluator {
	return &gate.Evaluator{
		NewGit:      func(dir string) gate.GitClient { return git.NewGit(dir) },
		Reviews:     forge.NewGH(repo.Dir()),
		Tracker:     tracker.Stub{},
		Tests:       gate.ExecTestRunner{Command: cfg.TestCommand},
		Meta:        store,
		BaseBranch:  cfg.DefaultBranch,
		TestTimeout: cfg.TestRunTimeout(),
	}
}

func newProvisioner(cfg *config.Config, repo *git.Git, store *workspace.Store) *lifecycle.Provisioner {
	return &lifecycle.Provisioner{
		Store:     store,
		Reviews:   forge.NewGH(repo.Dir()),
		Git:       repo,
		Protected: cfg.ProtectedBranches,
	}
}

func newReclaimer(cfg *config.Config, repo *git.Git, store *workspace.Store, reason string) *lifecycle.Reclaimer {
	return &lifecycle.Reclaimer{
		Store:   store,
		Archive: workspace.NewArchive(cfg.ArchivePath()),
		Gate:    newEvaluator(cfg, repo, store),
		Git:     repo,
		LockDir: cfg.LockPath(),
		Reason:  reason,
	}
}
