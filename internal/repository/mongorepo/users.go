package mongorepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PendingTasks []string           `bson:"pendingTasks"`
	DateCreated  time.Time          `bson:"dateCreated"`
}

func (d *userDoc) entity() *entities.User {
	pending := d.PendingTasks
	if pending == nil {
		pending = []string{}
	}
	return &entities.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PendingTasks: pending,
		DateCreated:  d.DateCreated.UTC(),
	}
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PendingTasks: user.PendingTasks,
		DateCreated:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if doc.PendingTasks == nil {
		doc.PendingTasks = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapWriteError(err))
	}
	return doc.entity(), nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if notFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.entity(), nil
}

func (r *userRepository) Find(ctx context.Context, q *query.Query) ([]*entities.User, error) {
	filter, err := compileFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*entities.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].entity())
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, f query.Filter) (int64, error) {
	filter, err := compileFilter(f)
	if err != nil {
		return 0, err
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.PendingTasks != nil {
		pending := *patch.PendingTasks
		if pending == nil {
			pending = []string{}
		}
		set = append(set, bson.E{Key: "pendingTasks", Value: pending})
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if notFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", mapWriteError(err))
	}
	return doc.entity(), nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (*entities.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	err = r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if notFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return doc.entity(), nil
}

func (r *userRepository) AddPendingTask(ctx context.Context, userID, taskID string) error {
	return r.updatePending(ctx, userID, "$addToSet", taskID)
}

func (r *userRepository) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	return r.updatePending(ctx, userID, "$pull", taskID)
}

func (r *userRepository) updatePending(ctx context.Context, userID, op, taskID string) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.D{{Key: op, Value: bson.D{{Key: "pendingTasks", Value: taskID}}}})
	if err != nil {
		return fmt.Errorf("failed to update pending tasks: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
