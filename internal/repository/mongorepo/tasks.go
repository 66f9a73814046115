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

type taskDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Description      string             `bson:"description"`
	Deadline         time.Time          `bson:"deadline"`
	Completed        bool               `bson:"completed"`
	AssignedUser     string             `bson:"assignedUser"`
	AssignedUserName string             `bson:"assignedUserName"`
	DateCreated      time.Time          `bson:"dateCreated"`
}

func (d *taskDoc) entity() *entities.Task {
	return &entities.Task{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Description:      d.Description,
		Deadline:         d.Deadline.UTC(),
		Completed:        d.Completed,
		AssignedUser:     d.AssignedUser,
		AssignedUserName: d.AssignedUserName,
		DateCreated:      d.DateCreated.UTC(),
	}
}

type taskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &taskRepository{coll: db.Collection(tasksCollection)}
}

func (r *taskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	doc := taskDoc{
		ID:               primitive.NewObjectID(),
		Name:             task.Name,
		Description:      task.Description,
		Deadline:         task.Deadline.UTC().Truncate(time.Millisecond),
		Completed:        task.Completed,
		AssignedUser:     task.AssignedUser,
		AssignedUserName: task.AssignedUserName,
		DateCreated:      time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", mapWriteError(err))
	}
	return doc.entity(), nil
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*entities.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc taskDoc
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if notFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return doc.entity(), nil
}

func (r *taskRepository) Find(ctx context.Context, q *query.Query) ([]*entities.Task, error) {
	filter, err := compileFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*entities.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].entity())
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context, f query.Filter) (int64, error) {
	filter, err := compileFilter(f)
	if err != nil {
		return 0, err
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Deadline != nil {
		set = append(set, bson.E{Key: "deadline", Value: patch.Deadline.UTC()})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}
	if patch.AssignedUser != nil {
		set = append(set, bson.E{Key: "assignedUser", Value: *patch.AssignedUser})
	}
	if patch.AssignedUserName != nil {
		set = append(set, bson.E{Key: "assignedUserName", Value: *patch.AssignedUserName})
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var doc taskDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if notFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return doc.entity(), nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*entities.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc taskDoc
	err = r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if notFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return doc.entity(), nil
}

func (r *taskRepository) Unassign(ctx context.Context, ids []string) (int64, error) {
	oids := make(bson.A, 0, len(ids))
	for _, id := range ids {
		if oid, err := objectID(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "assignedUser", Value: ""},
			{Key: "assignedUserName", Value: entities.UnassignedUserName},
		}}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to unassign tasks: %w", err)
	}
	return res.MatchedCount, nil
}
