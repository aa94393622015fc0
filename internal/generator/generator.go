// Package generator defines the language-model boundary of the pipeline.
package generator

import (
	"context"
	"errors"
	"net"
)

// ErrUnavailable reports that the model server could not be reached.
// Adapters wrap it; callers test with errors.Is.
var ErrUnavailable = errors.New("generator unavailable")

// Options are the sampling parameters for one generation.
type Options struct {
	Temperature float64
	MaxTokens   int
	TopK        int
	TopP        float64
}

// DefaultOptions mirrors the tuning used for grounded French answers.
func DefaultOptions() Options {
	return Options{Temperature: 0.3, MaxTokens: 512, TopK: 40, TopP: 0.9}
}

// Generator produces a completion for a prompt.
type Generator interface {
	Model() string
	// Ping checks that the server answers and lists models.
	Ping(ctx context.Context) error
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Unreachable reports whether err is a transport failure, as opposed to an
// error returned by a server that did answer.
func Unreachable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}
