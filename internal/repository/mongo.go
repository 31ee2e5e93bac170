package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"task-manager/internal/model"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

// Mongo is a MongoDB-backed store holding the users and tasks collections.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to uri, verifies the connection and ensures indexes.
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{client: client, db: client.Database(dbName)}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = m.db.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create tasks index: %w", err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Users() *MongoUserRepository {
	return &MongoUserRepository{coll: m.db.Collection(usersCollection)}
}

func (m *Mongo) Tasks() *MongoTaskRepository {
	return &MongoTaskRepository{coll: m.db.Collection(tasksCollection)}
}

// Mongo stores dates with millisecond precision.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// MongoUserRepository persists users as documents keyed by ObjectID hex.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func (r *MongoUserRepository) Create(ctx context.Context, user *model.User) error {
	now := mongoNow()
	user.ID = primitive.NewObjectID().Hex()
	user.CreatedAt, user.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		user.ID = ""
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// MongoTaskRepository persists tasks; queries are always scoped by user_id.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := mongoNow()
	task.ID = primitive.NewObjectID().Hex()
	task.TitleLower = foldTitle(task.Title)
	task.CreatedAt, task.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		task.ID = ""
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	err := r.coll.FindOne(ctx, bson.M{"_id": taskID, "user_id": userID}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) List(ctx context.Context, userID string, filter model.TaskFilter, page Page) ([]model.Task, error) {
	query := bson.M{"user_id": userID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.Title != "" {
		query["title_lower"] = primitive.Regex{Pattern: regexp.QuoteMeta(foldTitle(filter.Title))}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if page.Limit > 0 {
		opts.SetSkip(int64(page.Offset)).SetLimit(int64(page.Limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := []model.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, userID, taskID string, upd model.TaskUpdate, now time.Time) (*model.Task, error) {
	set := bson.M{"updated_at": now.UTC().Truncate(time.Millisecond)}
	if upd.Title != nil {
		set["title"] = *upd.Title
		set["title_lower"] = foldTitle(*upd.Title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}

	var task model.Task
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": taskID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
