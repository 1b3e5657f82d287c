// Package generator defines the text completion boundary used by every
// stage that needs model output: grounded answers, spelling correction,
// length fixes, and style rewrites.
package generator

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the model produced no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// Generator produces a single completion for a system/user prompt pair.
// system may be empty. Implementations must return ErrEmptyCompletion
// (possibly wrapped) when the response contains no text.
type Generator interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}
