package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bashhack/gitdoc/internal/config"
	"github.com/bashhack/gitdoc/internal/errors"
	"github.com/bashhack/gitdoc/internal/git"
	"github.com/bashhack/gitdoc/internal/llm"
	"github.com/bashhack/gitdoc/internal/lock"
	"github.com/bashhack/gitdoc/internal/logger"
	"github.com/bashhack/gitdoc/internal/message"
	"github.com/bashhack/gitdoc/internal/status"
	"github.com/bashhack/gitdoc/internal/syncer"
	"github.com/bashhack/gitdoc/internal/watcher"
)

// VersionInfo is injected at build time.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// Locker manages the single-session lock
type Locker interface {
	Acquire() error
	Release() error
}

// AppOptions contains the app's dependencies. Every field except Version is
// optional; NewApp fills in the standard implementation for nil fields.
type AppOptions struct {
	Version VersionInfo

	// Logger is created from the settings when nil.
	Logger logger.Logger

	// Locker is created for the repository root when nil.
	Locker Locker

	// Interactor answers the force-push and squash prompts. Defaults to a
	// stdin reader, or to declining everything with --non-interactive.
	Interactor git.UserInteractor

	// I/O dependencies

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies

	// Exit terminates the process (defaults to os.Exit).
	Exit func(code int)

	// ExecLookPath locates the git executable (defaults to exec.LookPath).
	ExecLookPath func(file string) (string, error)

	// Getwd resolves the repository when --repo is not given.
	Getwd func() (string, error)

	// LookupEnv reads GITDOC_* overrides and API keys (defaults to os.LookupEnv).
	LookupEnv func(string) (string, bool)

	// OpenRepository opens the repository containing a path (defaults to git.Open).
	OpenRepository func(path string, log logger.Logger) (git.Repository, error)

	// NewService builds the text-completion service (defaults to
	// llm.FromEnvironment).
	NewService func(ctx context.Context, lookup func(string) (string, bool)) (llm.Service, error)
}

// App is the gitdoc command-line application. It owns the resources shared
// by every command: the logger and, while watching, the session lock.
type App struct {
	Version VersionInfo

	Logger     logger.Logger
	Locker     Locker
	Interactor git.UserInteractor

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	exit           func(code int)
	execLookPath   func(file string) (string, error)
	getwd          func() (string, error)
	lookupEnv      func(string) (string, bool)
	openRepository func(path string, log logger.Logger) (git.Repository, error)
	newService     func(ctx context.Context, lookup func(string) (string, bool)) (llm.Service, error)

	// command-line state, reset by every Execute
	flags          *config.Flags
	repoPath       string
	verbose        bool
	nonInteractive bool
}

// NewDefaultApp creates an App with the standard dependencies.
func NewDefaultApp(version VersionInfo) *App {
	return NewApp(AppOptions{
		Version:      version,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Exit:         os.Exit,
		ExecLookPath: exec.LookPath,
		Getwd:        os.Getwd,
		LookupEnv:    os.LookupEnv,
	})
}

// NewApp creates an App from opts, defaulting every nil dependency.
func NewApp(opts AppOptions) *App {
	app := &App{
		Version:        opts.Version,
		Logger:         opts.Logger,
		Locker:         opts.Locker,
		Interactor:     opts.Interactor,
		Stdin:          opts.Stdin,
		Stdout:         opts.Stdout,
		Stderr:         opts.Stderr,
		exit:           opts.Exit,
		execLookPath:   opts.ExecLookPath,
		getwd:          opts.Getwd,
		lookupEnv:      opts.LookupEnv,
		openRepository: opts.OpenRepository,
		newService:     opts.NewService,
	}

	// Set defaults for nil dependencies
	if app.Stdin == nil {
		app.Stdin = os.Stdin
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.getwd == nil {
		app.getwd = os.Getwd
	}
	if app.lookupEnv == nil {
		app.lookupEnv = os.LookupEnv
	}
	if app.openRepository == nil {
		app.openRepository = func(path string, log logger.Logger) (git.Repository, error) {
			return git.Open(path, log)
		}
	}
	if app.newService == nil {
		app.newService = func(ctx context.Context, lookup func(string) (string, bool)) (llm.Service, error) {
			return llm.FromEnvironment(ctx, lookup)
		}
	}

	return app
}

// cmdContext holds what one command needs, built from the repository the
// command targets.
type cmdContext struct {
	Repo         git.Repository
	Store        *config.Store
	Logger       logger.Logger
	Service      llm.Service
	State        *status.SyncState
	Syncer       *syncer.Syncer
	Orchestrator *watcher.Orchestrator
}

// Close stops pending commit evaluations and waits for running ones.
func (c *cmdContext) Close() {
	if c.Orchestrator != nil {
		c.Orchestrator.Close()
	}
}

// initContext opens the target repository and its settings, then wires the
// commit pipeline for it.
func (a *App) initContext(ctx context.Context) (*cmdContext, error) {
	if err := a.checkRequiredCommands(); err != nil {
		return nil, err
	}

	path := a.repoPath
	if path == "" {
		wd, err := a.getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine the working directory")
		}
		path = wd
	}

	// The repository is opened with a throwaway logger: the real one
	// depends on settings that live inside the repository.
	repo, err := a.openRepository(path, logger.Nop())
	if err != nil {
		return nil, err
	}

	store, err := config.NewStore(filepath.Join(repo.Root(), config.FileName), config.Overlay(a.flags, a.lookupEnv))
	if err != nil {
		return nil, err
	}
	settings := store.Snapshot()

	if a.Logger == nil {
		logFile := settings.LogFile
		if logFile == "" {
			logFile = config.DefaultLogFile(repo.Root())
		}
		log := logger.NewWithOutput(settings.Debug, logFile, a.verbose, a.Stdout, a.Stderr)
		log.AddField("session", uuid.NewString())
		log.AddField("repo", repo.Root())
		a.Logger = log
	}
	a.Logger.Info("Settings: %s", settings)

	// Reopen so git operations log through the session logger.
	if repo, err = a.openRepository(repo.Root(), a.Logger); err != nil {
		return nil, err
	}

	svc, err := a.newService(ctx, a.lookupEnv)
	if err != nil {
		a.Logger.Warning("AI backends unavailable: %v", err)
		svc = nil
	}

	state := status.New(settings.Enabled)
	sched := syncer.New(store, state, a.interactor(), a.Logger)
	resolver := message.NewResolver(svc, a.Logger)

	return &cmdContext{
		Repo:         repo,
		Store:        store,
		Logger:       a.Logger,
		Service:      svc,
		State:        state,
		Syncer:       sched,
		Orchestrator: watcher.NewOrchestrator(store, resolver, sched, a.Logger),
	}, nil
}

func (a *App) interactor() git.UserInteractor {
	if a.Interactor != nil {
		return a.Interactor
	}
	if a.nonInteractive {
		a.Interactor = git.NewNonInteractiveInteractor()
	} else {
		i := git.NewDefaultInteractor(a.Logger)
		i.Reader = a.Stdin
		a.Interactor = i
	}
	return a.Interactor
}

// acquireLock takes the single-session lock for root.
func (a *App) acquireLock(root string) error {
	if a.Locker == nil {
		locker, err := lock.New(root)
		if err != nil {
			return errors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = locker
	}

	if err := a.Locker.Acquire(); err != nil {
		if errors.Is(err, errors.ErrAlreadyRunning) {
			return err
		}
		return errors.Wrap(errors.ErrLockAcquisitionFailure, err.Error())
	}
	return nil
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "gitdoc %s (%s) built on %s\n",
		a.Version.Version,
		a.Version.Commit,
		a.Version.Date)
}

// checkRequiredCommands verifies git is available in PATH
func (a *App) checkRequiredCommands() error {
	_, err := a.execLookPath("git")
	if err != nil {
		return fmt.Errorf("git is not found in PATH")
	}
	return nil
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	if a.Locker != nil {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
