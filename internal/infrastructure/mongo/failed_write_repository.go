package mongo

import (
	"context"
	"errors"

	"github.com/sai-darshan-k/Vimal-Task/internal/farm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FailedWriteRepository implements application.FailedWriteJournal using MongoDB.
type FailedWriteRepository struct {
	collection *mongo.Collection
}

// NewFailedWriteRepository creates a journal backed by the given collection.
func NewFailedWriteRepository(db *mongo.Database, collectionName string) *FailedWriteRepository {
	return &FailedWriteRepository{collection: db.Collection(collectionName)}
}

// Record は書き込み失敗を 1 件追記する。
func (r *FailedWriteRepository) Record(ctx context.Context, entry domain.FailedWrite) error {
	_, err := r.collection.InsertOne(ctx, newFailedWriteDocument(entry))
	return err
}

// Recent は新しい順に最大 limit 件の失敗を返す。
func (r *FailedWriteRepository) Recent(ctx context.Context, limit int) ([]domain.FailedWrite, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]domain.FailedWrite, 0)
	for cursor.Next(ctx) {
		var doc FailedWriteDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, mapFailedWriteDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete は再送済みの失敗を 1 件削除する。
func (r *FailedWriteRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errors.New("failed write not found")
	}
	return nil
}

// EnsureIndexes は一覧取得用の createdAt インデックスを作成する。
func (r *FailedWriteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_failed_write_createdAt"),
	})
	return err
}
