package engine

import (
	"context"

	"github.com/Veraticus/thrift/internal/chat"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
)

// Classifier defines the contract for producing a verdict for one record.
type Classifier interface {
	Classify(ctx context.Context, raw model.RawTransaction) model.Verdict
	Reclassify(ctx context.Context, txn model.Transaction) model.Verdict
}

// ChatHandler answers one chat turn for a user.
type ChatHandler interface {
	Handle(ctx context.Context, user *model.User, history []llm.Message) (chat.Reply, error)
}

// ProgressFunc is called after each record of a batch operation.
type ProgressFunc func(done, total int)
