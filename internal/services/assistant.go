// Package services – AssistantResponder
//
// This file implements the automated assistant persona. Community messages
// from a real user trigger a reply: after a short randomized "typing" delay
// the text-generation collaborator is called through the retry policy, and an
// empty completion degrades to a fixed apology line. A failure after all
// retries is reported to the caller, who logs and suppresses it; no reply is
// posted in that case.
package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/skillup-app/go-skillup-backend/internal/genai"
	"github.com/skillup-app/go-skillup-backend/internal/retry"
)

// SystemPrompt is the fixed instruction sent with every assistant request.
const SystemPrompt = "You are a friendly assistant for skill learning and personal growth. You MUST respond to user's queries in English. Keep your responses short, natural, and encouraging, like a real friend or coach."

// FallbackReply is posted when the collaborator answers but produces no
// usable text.
const FallbackReply = "Sorry, I can't answer that right now."

// AssistantName is the display name the assistant's messages carry in chat.
const AssistantName = "AI Assistant"

// AssistantResponder turns user utterances into assistant replies.
type AssistantResponder struct {
	// Gen is the text-generation collaborator.
	Gen genai.TextGenerator
	// Retry wraps every collaborator call.
	Retry retry.Policy
	// Delay and Jitter bound the randomized pause before the collaborator is
	// called: Delay + [0, Jitter).
	Delay  time.Duration
	Jitter time.Duration

	// rng is overridable in tests; nil means the global source.
	rng func() float64
}

// NewAssistantResponder constructs a responder with the standard retry and
// delay policy.
func NewAssistantResponder(gen genai.TextGenerator) *AssistantResponder {
	return &AssistantResponder{
		Gen:    gen,
		Retry:  retry.Policy{MaxAttempts: 3, BaseDelay: time.Second},
		Delay:  500 * time.Millisecond,
		Jitter: time.Second,
	}
}

// Reply produces the assistant's answer to a user utterance. It blocks for
// the randomized typing delay, then calls the collaborator with retries. An
// error return means all attempts failed; the caller logs and suppresses.
func (a *AssistantResponder) Reply(ctx context.Context, utterance string) (string, error) {
	if err := a.pause(ctx); err != nil {
		return "", err
	}

	reply, err := retry.Do(ctx, a.Retry, func(ctx context.Context) (string, error) {
		return a.Gen.Generate(ctx, utterance)
	})
	if err != nil {
		if errors.Is(err, genai.ErrEmptyCompletion) {
			return FallbackReply, nil
		}
		return "", err
	}
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

// pause sleeps for Delay plus a random fraction of Jitter, aborting early on
// context cancellation.
func (a *AssistantResponder) pause(ctx context.Context) error {
	d := a.Delay
	if a.Jitter > 0 {
		r := a.rng
		if r == nil {
			r = rand.Float64
		}
		d += time.Duration(r() * float64(a.Jitter))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
