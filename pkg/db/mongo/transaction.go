package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	apperrors "skillex/pkg/errors"
)

// TransactionFunc runs inside an open transaction. Every repository call it
// makes must use the session context it receives, or the read will not see
// the transaction's snapshot.
type TransactionFunc func(ctx mongo.SessionContext) error

// TransactionManager wraps a check-then-write sequence in a multi-document
// transaction, for places where a precondition read and the following insert
// must observe the same snapshot.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type txManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &txManager{client: client}
}

func (m *txManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, txOpts)

	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		// Domain errors pass through for status mapping.
		return err
	default:
		return fmt.Errorf("transaction aborted: %w", err)
	}
}
