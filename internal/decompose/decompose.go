// Package decompose turns an assignment description into subtasks.
//
// A Decomposer first asks an external Provider (typically an LLM) for
// candidate subtasks and repairs whatever comes back. When no provider is
// configured, or the provider fails in any way, it substitutes the
// deterministic template-based Fallback instead.
package decompose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// DefaultProviderTimeout bounds a single provider call.
const DefaultProviderTimeout = 60 * time.Second

// Source records which strategy produced a set of subtasks.
type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// ErrNoProvider is returned by TryGenerate when no provider is configured.
var ErrNoProvider = errors.New("no decomposition provider configured")

// Input describes the assignment to decompose.
type Input struct {
	Title       string
	Description string
	DueDate     time.Time
	Parts       int
	Members     []models.Member
	Constraints models.Constraints
}

// Provider generates candidate subtasks from an assignment description.
// Candidates are untrusted and are always passed through Repair.
type Provider interface {
	Generate(ctx context.Context, in Input) ([]Candidate, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, in Input) ([]Candidate, error)

// Generate calls f.
func (f ProviderFunc) Generate(ctx context.Context, in Input) ([]Candidate, error) {
	return f(ctx, in)
}

// Result is the outcome of Decompose.
type Result struct {
	Subtasks []models.Subtask
	Source   Source
	// ProviderErr is set when the provider was tried and failed.
	ProviderErr error
}

// Decomposer breaks an assignment into subtasks.
type Decomposer struct {
	provider Provider
	fallback *Fallback
	timeout  time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Decomposer.
type Option func(*Decomposer)

// WithTimeout sets the provider call timeout.
func WithTimeout(d time.Duration) Option {
	return func(dc *Decomposer) {
		if d > 0 {
			dc.timeout = d
		}
	}
}

// WithClock sets the time source used for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(dc *Decomposer) { dc.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(dc *Decomposer) { dc.logger = l }
}

// New creates a Decomposer. A nil provider means every call uses the fallback.
func New(provider Provider, opts ...Option) *Decomposer {
	d := &Decomposer{
		provider: provider,
		fallback: NewFallback(),
		timeout:  DefaultProviderTimeout,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HasProvider reports whether an external provider is configured.
func (d *Decomposer) HasProvider() bool {
	return d.provider != nil
}

// Decompose validates the input and produces subtasks, preferring the
// provider and falling back to templates on any provider failure.
// Only a *models.ValidationError is ever returned.
func (d *Decomposer) Decompose(ctx context.Context, in Input) (*Result, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	var providerErr error
	if d.provider != nil {
		subtasks, err := d.TryGenerate(ctx, in)
		if err == nil {
			d.logger.Info().
				Str("title", in.Title).
				Int("subtasks", len(subtasks)).
				Msg("decomposed with provider")
			return &Result{Subtasks: subtasks, Source: SourceProvider}, nil
		}
		providerErr = err
		d.logger.Warn().Err(err).Str("title", in.Title).Msg("provider failed, using fallback decomposition")
	}

	subtasks := d.FallbackGenerate(in)
	d.logger.Info().
		Str("title", in.Title).
		Int("subtasks", len(subtasks)).
		Msg("decomposed with fallback templates")
	return &Result{Subtasks: subtasks, Source: SourceFallback, ProviderErr: providerErr}, nil
}

// TryGenerate asks the provider for candidates and repairs them.
// Every failure is returned as a *models.ProviderError.
func (d *Decomposer) TryGenerate(ctx context.Context, in Input) ([]models.Subtask, error) {
	if d.provider == nil {
		return nil, &models.ProviderError{Op: "generate", Err: ErrNoProvider}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	candidates, err := d.provider.Generate(callCtx, in)
	if err != nil {
		return nil, &models.ProviderError{Op: "generate", Err: err}
	}
	if len(candidates) == 0 {
		return nil, &models.ProviderError{Op: "parse", Err: fmt.Errorf("empty task list returned")}
	}
	d.logger.Debug().
		Dur("elapsed", time.Since(start)).
		Int("candidates", len(candidates)).
		Msg("provider returned candidates")

	return Repair(candidates, in.Parts, in.Members, in.Constraints, d.now()), nil
}

// FallbackGenerate produces template-based subtasks. It never fails.
func (d *Decomposer) FallbackGenerate(in Input) []models.Subtask {
	return d.fallback.Generate(in.Title, in.Description, in.Parts, in.Members)
}

// ValidateInput checks the preconditions shared by every strategy.
func ValidateInput(in Input) error {
	if strings.TrimSpace(in.Title) == "" {
		return &models.ValidationError{Field: "title", Message: "must not be empty"}
	}
	if in.Parts < 1 {
		return &models.ValidationError{Field: "parts", Message: fmt.Sprintf("must be at least 1, got %d", in.Parts)}
	}
	if err := ValidateMembers(in.Members); err != nil {
		return err
	}
	return in.Constraints.Validate()
}

// ValidateMembers requires a non-empty list of uniquely named members.
func ValidateMembers(members []models.Member) error {
	if len(members) == 0 {
		return &models.ValidationError{Field: "members", Message: "at least one member is required"}
	}
	seen := make(map[string]bool, len(members))
	for i, m := range members {
		if strings.TrimSpace(m.Name) == "" {
			return &models.ValidationError{Field: "members", Message: fmt.Sprintf("member %d has no name", i)}
		}
		if seen[m.Name] {
			return &models.ValidationError{Field: "members", Message: fmt.Sprintf("duplicate member name %q", m.Name)}
		}
		seen[m.Name] = true
	}
	return nil
}
