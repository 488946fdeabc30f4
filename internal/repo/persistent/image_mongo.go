package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const imagesCollection = "images"

type imageDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	URL         string        `bson:"url"`
	StorageKey  string        `bson:"storage_key"`
	Approved    bool          `bson:"approved"`
	ContentType string        `bson:"content_type"`
	Size        int64         `bson:"size"`
	Width       int           `bson:"width"`
	Height      int           `bson:"height"`
	CreatedAt   time.Time     `bson:"created_at"`
}

func (d *imageDocument) toEntity() *entity.Image {
	return &entity.Image{
		ID:          d.ID.Hex(),
		URL:         d.URL,
		StorageKey:  d.StorageKey,
		Approved:    d.Approved,
		ContentType: d.ContentType,
		Size:        d.Size,
		Width:       d.Width,
		Height:      d.Height,
		CreatedAt:   d.CreatedAt,
	}
}

type ImageMongoRepo struct {
	coll *mongo.Collection
}

func NewImageMongoRepo(db *mongo.Database) *ImageMongoRepo {
	return &ImageMongoRepo{coll: db.Collection(imagesCollection)}
}

// EnsureIndexes creates the index backing the moderation listings.
func (r *ImageMongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: approvedColumn, Value: 1},
			{Key: createdAtColumn, Value: -1},
		},
	})
	if err != nil {
		return fmt.Errorf("ImageMongoRepo - EnsureIndexes - r.coll.Indexes.CreateOne: %w", err)
	}

	return nil
}

func (r *ImageMongoRepo) Create(ctx context.Context, image *entity.Image) error {
	doc := imageDocument{
		ID:          bson.NewObjectID(),
		URL:         image.URL,
		StorageKey:  image.StorageKey,
		Approved:    image.Approved,
		ContentType: image.ContentType,
		Size:        image.Size,
		Width:       image.Width,
		Height:      image.Height,
		// mongo keeps milliseconds
		CreatedAt: image.CreatedAt.UTC().Truncate(time.Millisecond),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("ImageMongoRepo - Create - r.coll.InsertOne: %w", err)
	}

	image.ID = doc.ID.Hex()
	image.CreatedAt = doc.CreatedAt

	return nil
}

func (r *ImageMongoRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("ImageMongoRepo - GetByID - bson.ObjectIDFromHex: %w", errs.ErrRecordNotFound)
	}

	var doc imageDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ImageMongoRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageMongoRepo - GetByID - r.coll.FindOne: %w", err)
	}

	return doc.toEntity(), nil
}

func (r *ImageMongoRepo) SetApproved(ctx context.Context, id string) (*entity.Image, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("ImageMongoRepo - SetApproved - bson.ObjectIDFromHex: %w", errs.ErrRecordNotFound)
	}

	var doc imageDocument
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{approvedColumn: true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ImageMongoRepo - SetApproved: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageMongoRepo - SetApproved - r.coll.FindOneAndUpdate: %w", err)
	}

	return doc.toEntity(), nil
}

func (r *ImageMongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("ImageMongoRepo - Delete - bson.ObjectIDFromHex: %w", errs.ErrRecordNotFound)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ImageMongoRepo - Delete - r.coll.DeleteOne: %w", err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("ImageMongoRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *ImageMongoRepo) ListByApproved(ctx context.Context, approved bool) ([]*entity.Image, error) {
	cursor, err := r.coll.Find(
		ctx,
		bson.M{approvedColumn: approved},
		options.Find().SetSort(bson.D{{Key: createdAtColumn, Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("ImageMongoRepo - ListByApproved - r.coll.Find: %w", err)
	}

	var docs []imageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ImageMongoRepo - ListByApproved - cursor.All: %w", err)
	}

	images := make([]*entity.Image, 0, len(docs))
	for i := range docs {
		images = append(images, docs[i].toEntity())
	}

	return images, nil
}
