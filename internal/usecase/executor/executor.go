package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Config is the per-call policy: one timeout per capability invocation and a
// fixed attempt ceiling for transient failures.
type Config struct {
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

type Deps struct {
	Providers ports.ProviderRepository
	Cache     ports.CacheRepository
	Prompt    ports.PromptRenderer
	// BuildCapability returns a concrete capability for a provider record.
	BuildCapability func(*domain.Provider) (ports.Capability, error)
	Log             *slog.Logger
}

// Executor wraps one chunk translation through the external capability.
// It mutates nothing: all shared-state updates happen in the caller.
type Executor struct {
	d   Deps
	cfg Config
}

func New(d Deps, cfg Config) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Executor{d: d, cfg: cfg}
}

type Task struct {
	Chunk       *domain.Chunk
	SourceLang  string
	ProviderID  int64
	Model       string
	BypassCache bool
}

type Result struct {
	Translation string
	Attempts    int
	FromCache   bool
}

// Translate runs one chunk through the capability with retry and timeout.
// Transient failures (rate limiting, timeouts, 5xx) are retried with
// exponential backoff up to the attempt ceiling; on exhaustion the last
// error is returned for the caller to record on the chunk.
func (e *Executor) Translate(ctx context.Context, t Task) (Result, error) {
	if t.Chunk == nil {
		return Result{}, errors.New("chunk is required")
	}
	prov, err := e.d.Providers.Get(ctx, t.ProviderID)
	if err != nil {
		return Result{}, err
	}
	if prov == nil {
		return Result{}, fmt.Errorf("provider %d not found", t.ProviderID)
	}
	model := t.Model
	if model == "" {
		model = prov.Model
	}

	data := ports.PromptData{
		SrcLang: t.SourceLang,
		TgtLang: t.Chunk.TargetLang,
		Text:    t.Chunk.SourceText,
	}
	system, err := e.d.Prompt.Render(ctx, "provider", &prov.ID, "translate_chunk", "system", data)
	if err != nil {
		return Result{}, err
	}
	user, err := e.d.Prompt.Render(ctx, "provider", &prov.ID, "translate_chunk", "user", data)
	if err != nil {
		return Result{}, err
	}

	if !t.BypassCache && e.d.Cache != nil {
		if ce, _ := e.d.Cache.Get(ctx, t.Chunk.SourceText, t.SourceLang, t.Chunk.TargetLang, prov.Type, model); ce != nil {
			return Result{Translation: ce.Translation, FromCache: true}, nil
		}
	}

	backend, err := e.d.BuildCapability(prov)
	if err != nil {
		return Result{}, err
	}
	req := ports.TranslateRequest{
		Text:         t.Chunk.SourceText,
		SourceLang:   t.SourceLang,
		TargetLang:   t.Chunk.TargetLang,
		Model:        model,
		Temperature:  0.0,
		SystemPrompt: system,
		UserPrompt:   user,
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.RetryBackoff
	bo.MaxInterval = 10 * time.Second
	attempts := 0
	res, err := backoff.RetryWithData(func() (ports.TranslateResult, error) {
		attempts++
		cctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
		r, err := backend.Translate(cctx, req)
		if err != nil {
			if ctx.Err() != nil || !retryable(err) {
				return ports.TranslateResult{}, backoff.Permanent(err)
			}
			e.d.Log.Debug("chunk translation attempt failed",
				"project_id", t.Chunk.ProjectID, "seq", t.Chunk.Seq,
				"lang", t.Chunk.TargetLang, "attempt", attempts, "err", err)
			return ports.TranslateResult{}, err
		}
		return r, nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(e.cfg.MaxAttempts-1)), ctx))
	if err != nil {
		return Result{Attempts: attempts}, err
	}

	translated := strings.TrimSpace(res.Translation)
	if e.d.Cache != nil {
		_ = e.d.Cache.Put(ctx, &domain.CacheEntry{
			SourceText:  t.Chunk.SourceText,
			SrcLang:     t.SourceLang,
			TgtLang:     t.Chunk.TargetLang,
			Provider:    prov.Type,
			Model:       model,
			Translation: translated,
		})
	}
	return Result{Translation: translated, Attempts: attempts}, nil
}

// retryable reports whether the error is worth another attempt: rate
// limiting, per-call timeouts, and transient capability failures.
func retryable(err error) bool {
	if errors.Is(err, ports.ErrRateLimited) || errors.Is(err, ports.ErrTimeout) {
		return true
	}
	var capErr *ports.CapabilityError
	if errors.As(err, &capErr) {
		return capErr.Transient
	}
	return false
}
