package llm

import (
	"context"

	"github.com/Veraticus/thrift/internal/common"
)

// Unavailable is a Client with no backing provider.
type Unavailable struct{}

// Complete always fails with common.ErrUnavailable.
func (Unavailable) Complete(context.Context, string, string, float64) (string, error) {
	return "", common.ErrUnavailable
}

// Chat always fails with common.ErrUnavailable.
func (Unavailable) Chat(context.Context, []Message, float64) (string, error) {
	return "", common.ErrUnavailable
}
