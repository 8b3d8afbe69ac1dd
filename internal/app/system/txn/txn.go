// Package txn runs multi-collection writes inside a MongoDB
// transaction so that partial chains, partial decision writes, or
// partial visibility-grant replacement are never observable.
//
// Transactions require a replica set (or mongos). On standalone
// servers, typically local development, txn falls back to running the
// function without a transaction and logs a warning.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on db's client. The ctx passed
// to fn is session-scoped; all collection operations inside fn must use
// it for the writes to be part of the transaction.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("transactions not supported by server; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("transactions not supported by server; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (standalone server, no replica set).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if ce, ok := err.(mongo.CommandError); ok {
		// 20 IllegalOperation, 51 transaction numbers, 263 OperationNotSupportedInTransaction
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }

	if has("illegal operation") {
		return true
	}
	if has("transaction") && has("replica set") {
		return true
	}
	if has("session") && has("not supported") {
		return true
	}
	if has("transaction") && has("session") {
		return true
	}
	return false
}
