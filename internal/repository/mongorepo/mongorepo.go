// Package mongorepo stores users and tasks as documents in MongoDB.
package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// Connect opens a client and verifies the deployment is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique email index the duplicate-key check relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users.email index: %w", err)
	}
	_, err = db.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "assignedUser", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks.assignedUser index: %w", err)
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return oid, nil
}

// compileFilter translates f to a BSON filter. Several conditions are joined
// with $and so repeated fields keep all their predicates.
func compileFilter(f query.Filter) (bson.D, error) {
	parts := make(bson.A, 0, len(f))
	for _, c := range f {
		var operand any
		if c.Op.IsSet() {
			values := make(bson.A, 0, len(c.Values))
			for _, v := range c.Values {
				cv, err := convertOperand(c, v)
				if err != nil {
					return nil, err
				}
				values = append(values, cv)
			}
			operand = values
		} else {
			cv, err := convertOperand(c, c.Value)
			if err != nil {
				return nil, err
			}
			operand = cv
		}
		parts = append(parts, bson.D{{Key: c.Field, Value: bson.D{{Key: string(c.Op), Value: operand}}}})
	}

	switch len(parts) {
	case 0:
		return bson.D{}, nil
	case 1:
		return parts[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: parts}}, nil
}

func convertOperand(c query.Condition, v any) (any, error) {
	if c.Kind != query.KindID {
		return v, nil
	}
	s, _ := v.(string)
	return objectID(s)
}

func compileSort(sort []query.SortField) bson.D {
	out := bson.D{}
	for _, s := range sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: s.Field, Value: dir})
	}
	return out
}

func findOptions(q *query.Query) *options.FindOptions {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(compileSort(q.Sort))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return opts
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", repository.ErrDuplicateKey, err)
	}
	return err
}

func notFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
