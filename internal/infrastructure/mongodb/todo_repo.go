package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ErlanBelekov/todo-api/internal/domain"
)

type todoDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Description *string       `bson:"description,omitempty"`
	UserID      string        `bson:"user_id"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

func (d *todoDocument) toDomain() *domain.Todo {
	return &domain.Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type TodoRepository struct {
	coll *mongo.Collection
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	now := time.Now().UTC()
	doc := todoDocument{
		ID:          bson.NewObjectID(),
		Title:       todo.Title,
		Description: todo.Description,
		UserID:      todo.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTodoTitleTaken
		}
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Todo, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	var docs []todoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}

	todos := make([]*domain.Todo, 0, len(docs))
	for i := range docs {
		todos = append(todos, docs[i].toDomain())
	}
	return todos, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, domain.ErrTodoNotFound
	}

	var doc todoDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("find todo: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TodoRepository) Update(ctx context.Context, id, userID string, upd domain.TodoUpdate) (*domain.Todo, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, domain.ErrTodoNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}

	var doc todoDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrTodoNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrTodoTitleTaken
		}
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TodoRepository) Delete(ctx context.Context, id, userID string) error {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return domain.ErrTodoNotFound
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

// ownedFilter scopes a lookup to a single todo of a single owner. A malformed
// id can never match, so it reports false instead of querying.
func ownedFilter(id, userID string) (bson.M, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "user_id": userID}, true
}
