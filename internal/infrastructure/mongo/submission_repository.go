package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

// SubmissionRepository は応募コレクションを MongoDB 経由で扱うリポジトリ。
type SubmissionRepository struct {
	client      *mongo.Client
	submissions *mongo.Collection
	now         func() time.Time
}

// NewSubmissionRepository は応募コレクションを束縛したリポジトリを生成する。
func NewSubmissionRepository(client *mongo.Client, database, collection string) *SubmissionRepository {
	return &SubmissionRepository{
		client:      client,
		submissions: client.Database(database).Collection(collection),
		now:         time.Now,
	}
}

// Create は ID・作成日時・初期ステータスを採番して 1 件挿入する。
func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	id := primitive.NewObjectID()
	// Mongo の日時はミリ秒精度なので、返却値と保存値を揃える。
	createdAt := r.now().UTC().Truncate(time.Millisecond)

	doc := buildSubmissionDocument(sub, id, createdAt)
	if _, err := r.submissions.InsertOne(ctx, doc); err != nil {
		return err
	}

	sub.ID = id.Hex()
	sub.CreatedAt = createdAt
	sub.Status = domain.StatusNew
	return nil
}

// List は新しい順に全件を返す。同時刻の場合は ObjectID の降順で挿入順を保つ。
func (r *SubmissionRepository) List(ctx context.Context) ([]domain.Submission, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.submissions.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subs := make([]domain.Submission, 0)
	for cursor.Next(ctx) {
		var doc SubmissionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		subs = append(subs, mapSubmissionDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateStatus はステータスのみを上書きし、更新後のドキュメントを返す。
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Submission, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	update := bson.M{"$set": bson.M{"status": string(status)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated SubmissionDocument
	if err := r.submissions.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	sub := mapSubmissionDocument(updated)
	return &sub, nil
}

// Ping は MongoDB への疎通確認を行う。
func (r *SubmissionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
