package message

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bashhack/gitdoc/internal/config"
	"github.com/bashhack/gitdoc/internal/errors"
	"github.com/bashhack/gitdoc/internal/llm"
	"github.com/bashhack/gitdoc/internal/logger"
)

// diffConcurrency bounds the git processes spawned for one prompt.
const diffConcurrency = 4

// DiffSource yields the diff of one path against the last commit.
type DiffSource interface {
	DiffAgainstHead(ctx context.Context, path string) (string, error)
}

// Resolution is the message chosen for one commit attempt.
type Resolution struct {
	Parts Parts

	// Date is the instant captured for this attempt, in UTC. It is used for
	// both the template and the commit's author and committer dates.
	Date time.Time

	// Generated is true when a model wrote the message.
	Generated bool

	// Fallback holds the reason generation was abandoned, if it was tried.
	Fallback error
}

// Message returns the full commit message.
func (r Resolution) Message() string {
	return r.Parts.String()
}

// Resolver decides commit messages.
type Resolver struct {
	llm    llm.Service
	logger logger.Logger
	now    func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a Resolver. svc may be nil when no backend is
// configured; generation then always falls back to the template.
func NewResolver(svc llm.Service, log logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		llm:    svc,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks the message for changed (repository-relative paths).
// An explicit message is used verbatim. Otherwise the template is rendered,
// and when AI generation is enabled a generated message replaces it if
// generation succeeds. Generation failures never escape: they are logged,
// reported to the user as a warning, and recorded in Resolution.Fallback.
func (r *Resolver) Resolve(ctx context.Context, s config.Settings, repo DiffSource, changed []string, explicit string) Resolution {
	now := r.now()
	res := Resolution{Date: now.UTC()}

	if explicit != "" {
		res.Parts = Parts{Title: explicit}
		return res
	}

	res.Parts = Parts{Title: FormatTime(now.In(s.Location()), s.CommitMessageFormat)}
	if !s.AIEnabled {
		return res
	}

	r.logger.Info("Generating commit message with %s for %d file(s)", s.AIModel, len(changed))
	parts, err := r.Generate(ctx, s, repo, changed)
	if err != nil {
		r.logger.Warning("Commit message generation failed: %v", err)
		r.logger.WarningToUser("AI commit message unavailable, using the date/time format instead")
		res.Fallback = err
		return res
	}

	res.Parts = parts
	res.Generated = true
	return res
}

// Generate asks the configured model for a commit message.
func (r *Resolver) Generate(ctx context.Context, s config.Settings, repo DiffSource, changed []string) (Parts, error) {
	retained := changed
	if len(retained) > s.AIMaxFiles {
		retained = retained[:s.AIMaxFiles]
	}
	overflow := len(changed) - len(retained)

	diffs := make([]FileDiff, len(retained))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(diffConcurrency)
	for i, path := range retained {
		g.Go(func() error {
			diff, err := repo.DiffAgainstHead(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "diff %s", path)
			}
			diffs[i] = FileDiff{Path: path, Diff: TruncateDiff(diff, s.AIMaxDiffLength)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Parts{}, errors.NewGenerationError(s.AIModel, "diff", err)
	}

	prompt := BuildPrompt(diffs, overflow, PromptOptions{
		UseEmojis:           s.AIUseEmojis,
		UseConsistentEmojis: s.AIUseConsistentEmojis,
		CustomInstructions:  s.AICustomInstructions,
	})

	model, err := r.selectModel(ctx, s.AIModel)
	if err != nil {
		return Parts{}, err
	}
	r.logger.Info("Model selected: %s (%s)", model.ID, model.Vendor)

	reply, err := llm.Collect(r.llm.Send(ctx, model.ID, []llm.Message{llm.UserMessage(prompt)}))
	if err != nil {
		return Parts{}, errors.NewGenerationError(s.AIModel, "request", err)
	}
	r.logger.Info("Raw model reply: %q", reply)

	parts, strategy := Parse(reply)
	if parts.Title == "" {
		return Parts{}, errors.NewGenerationError(s.AIModel, "parse", errors.ErrEmptyTitle)
	}
	r.logger.Info("Reply parsed with the %s strategy", strategy)

	parts.Title = TruncateTitle(parts.Title)
	if s.AIUseEmojis {
		parts.Title = Decorate(parts.Title)
	}
	return parts, nil
}

func (r *Resolver) selectModel(ctx context.Context, family string) (llm.Model, error) {
	if r.llm == nil {
		return llm.Model{}, errors.NewGenerationError(family, "model selection", errors.ErrNoModel)
	}

	vendor := llm.VendorFor(family)
	models, err := r.llm.ListModels(ctx, llm.Filter{Vendor: vendor, Family: family})
	if err != nil {
		return llm.Model{}, errors.NewGenerationError(family, "model selection", err)
	}
	if len(models) == 0 {
		return llm.Model{}, errors.NewGenerationError(family, "model selection",
			errors.Wrapf(errors.ErrNoModel, "no %s model for family %s", vendor, family))
	}
	return models[0], nil
}
