// Package dispatch implements the request pipeline shared by every transport.
//
// The dispatcher validates inbound requests, then drives the translation
// gateway under the retry policy and a circuit breaker. Speech synthesis is
// breaker-guarded but never retried. Transports only see the Service
// methods and the tagged errors they return.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nadzzz/lingua/internal/apierr"
	"github.com/nadzzz/lingua/internal/message"
	"github.com/nadzzz/lingua/internal/retry"
	"github.com/nadzzz/lingua/internal/translator"
	"github.com/nadzzz/lingua/internal/tts"
)

const (
	msgTranslateUnavailable = "Translation service temporarily unavailable"
	msgSpeechUnavailable    = "Speech service temporarily unavailable"
)

// BreakerOptions configures the per-gateway circuit breakers.
type BreakerOptions struct {
	Enabled          bool
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Options configures a Dispatcher.
type Options struct {
	Retry   retry.Policy
	Breaker BreakerOptions
}

// Dispatcher is the central request pipeline.
type Dispatcher struct {
	translator  translator.Translator
	synthesizer tts.Synthesizer
	policy      retry.Policy

	translateCB *gobreaker.CircuitBreaker // nil when breakers are disabled
	speechCB    *gobreaker.CircuitBreaker
}

// New creates a new Dispatcher over the given gateways. Either gateway may be
// nil, in which case its operation reports KindUnavailable.
func New(tr translator.Translator, synth tts.Synthesizer, opts Options) *Dispatcher {
	d := &Dispatcher{
		translator:  tr,
		synthesizer: synth,
		policy:      opts.Retry,
	}
	if d.policy.Retryable == nil {
		d.policy.Retryable = apierr.IsRetryable
	}
	if opts.Breaker.Enabled && tr != nil {
		d.translateCB = newBreaker("translate:"+tr.Name(), opts.Breaker)
	}
	if opts.Breaker.Enabled && synth != nil {
		d.speechCB = newBreaker("speech:"+synth.Name(), opts.Breaker)
	}
	return d
}

func newBreaker(name string, o BreakerOptions) *gobreaker.CircuitBreaker {
	threshold := o.FailureThreshold
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     o.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: breakerSuccess,
	})
}

// breakerSuccess reports whether err leaves the upstream looking healthy.
// A reply that failed parsing or validation still proves the upstream answered,
// and a caller that hung up says nothing about the upstream at all.
func breakerSuccess(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch apierr.KindOf(err) {
	case apierr.KindUpstream, apierr.KindUpstreamShape, apierr.KindTransport:
		return false
	default:
		return true
	}
}

// guard runs fn through cb, mapping an open breaker to KindUnavailable.
func guard[T any](cb *gobreaker.CircuitBreaker, unavailable string, fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}
	v, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, apierr.Wrap(apierr.KindUnavailable, unavailable, err)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Translate validates req and runs the translation gateway under the retry
// policy. Exhaustion keeps the last failure's kind and status.
func (d *Dispatcher) Translate(ctx context.Context, req *message.TranslationRequest) (*message.TranslationResult, error) {
	if err := req.Validate(); err != nil {
		slog.Debug("translation request rejected", "error", err)
		return nil, err
	}
	if d.translator == nil {
		return nil, apierr.New(apierr.KindUnavailable, msgTranslateUnavailable)
	}

	start := time.Now()
	logger := slog.With("backend", d.translator.Name(),
		"source_language", req.SourceLanguage, "target_language", req.TargetLanguage)

	res, err := retry.Do(ctx, d.policy, func(ctx context.Context, attempt int) (*message.TranslationResult, error) {
		r, err := guard(d.translateCB, msgTranslateUnavailable, func() (*message.TranslationResult, error) {
			return d.translator.Translate(ctx, req)
		})
		if err != nil {
			logger.Warn("translation attempt failed", "attempt", attempt, "kind", apierr.KindOf(err), "error", apierr.MessageOf(err))
		}
		return r, err
	})
	if err != nil {
		err = exhausted(err)
		logger.Error("translation failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	logger.Info("translation complete", "duration", time.Since(start), "formality", req.Formality)
	return res, nil
}

// exhausted rewrites a *retry.ExhaustedError into a tagged error that keeps
// the last attempt's kind and status.
func exhausted(err error) error {
	var ex *retry.ExhaustedError
	if !errors.As(err, &ex) {
		return err
	}
	out := &apierr.Error{
		Kind:    apierr.KindUpstream,
		Message: fmt.Sprintf("Translation failed after %s: %s", retry.Attempts(ex.Attempts), apierr.MessageOf(ex.Last)),
		Err:     err,
	}
	if last, ok := apierr.As(ex.Last); ok {
		out.Kind = last.Kind
		out.Status = last.Status
		out.Raw = last.Raw
	}
	return out
}

// Synthesize validates req and makes a single synthesis call.
func (d *Dispatcher) Synthesize(ctx context.Context, req *message.SpeechRequest) (*message.SpeechResult, error) {
	if err := req.Validate(); err != nil {
		slog.Debug("speech request rejected", "error", err)
		return nil, err
	}
	if d.synthesizer == nil {
		return nil, apierr.New(apierr.KindUnavailable, msgSpeechUnavailable)
	}

	start := time.Now()
	lang := req.NormalizedLanguage()
	logger := slog.With("backend", d.synthesizer.Name(), "language", lang)

	res, err := guard(d.speechCB, msgSpeechUnavailable, func() (*message.SpeechResult, error) {
		return d.synthesizer.Synthesize(ctx, req.Text, tts.SynthesizeOpts{Language: lang})
	})
	if err != nil {
		logger.Error("speech synthesis failed", "kind", apierr.KindOf(err), "error", apierr.MessageOf(err))
		return nil, err
	}

	logger.Info("speech synthesis complete", "voice", res.Voice, "audio_bytes", len(res.Audio), "duration", time.Since(start))
	return res, nil
}

// Ready reports whether neither breaker is open.
func (d *Dispatcher) Ready() bool {
	for _, cb := range []*gobreaker.CircuitBreaker{d.translateCB, d.speechCB} {
		if cb != nil && cb.State() == gobreaker.StateOpen {
			return false
		}
	}
	return true
}

// Close releases both gateways.
func (d *Dispatcher) Close() error {
	var errs []error
	if d.translator != nil {
		errs = append(errs, d.translator.Close())
	}
	if d.synthesizer != nil {
		errs = append(errs, d.synthesizer.Close())
	}
	return errors.Join(errs...)
}
