package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
	"kv-shepherd.io/adminseed/internal/schema"
)

// Mongo stores records as documents of one collection. The collection's
// $jsonSchema validator, when present, is the live schema.
type Mongo struct {
	coll     *mongo.Collection
	keyField string
}

// NewMongo creates a store over coll, keyed by keyField.
func NewMongo(coll *mongo.Collection, keyField string) *Mongo {
	return &Mongo{coll: coll, keyField: keyField}
}

func (m *Mongo) filter(key string) bson.D {
	return bson.D{{Key: m.keyField, Value: key}}
}

// FindOne implements reconcile.Store.
func (m *Mongo) FindOne(ctx context.Context, key string) (domain.Record, error) {
	var doc bson.M
	err := m.coll.FindOne(ctx, m.filter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %q: %w", m.keyField, key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", m.coll.Name(), err)
	}
	return domain.Record(doc), nil
}

// Create implements reconcile.Store.
func (m *Mongo) Create(ctx context.Context, rec domain.Record) error {
	if _, err := m.coll.InsertOne(ctx, bson.M(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", m.keyField, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert into %s: %w", m.coll.Name(), err)
	}
	return nil
}

// Save implements reconcile.Store with a single $set, which MongoDB applies
// atomically to the one matched document.
func (m *Mongo) Save(ctx context.Context, key string, changes domain.Record) error {
	res, err := m.coll.UpdateOne(ctx, m.filter(key), bson.D{{Key: "$set", Value: bson.M(changes)}})
	if err != nil {
		return fmt.Errorf("update %s: %w", m.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %q: %w", m.keyField, key, apperrors.ErrNotFound)
	}
	return nil
}

// Describe implements schema.Provider from the collection's validator.
func (m *Mongo) Describe(ctx context.Context) (schema.Description, error) {
	specs, err := m.coll.Database().ListCollectionSpecifications(ctx, bson.D{{Key: "name", Value: m.coll.Name()}})
	if err != nil {
		return nil, fmt.Errorf("list collection %s: %w", m.coll.Name(), err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("collection %s does not exist: %w", m.coll.Name(), apperrors.ErrNoSchema)
	}

	v, err := specs[0].Options.LookupErr("validator", "$jsonSchema")
	if err != nil {
		return nil, fmt.Errorf("collection %s has no $jsonSchema validator: %w", m.coll.Name(), apperrors.ErrNoSchema)
	}
	doc, ok := v.DocumentOK()
	if !ok {
		return nil, fmt.Errorf("collection %s $jsonSchema is %s: %w", m.coll.Name(), v.Type, apperrors.ErrMalformedSchema)
	}
	return schema.FromJSONSchema(doc), nil
}

// EnsureUniqueKey creates a unique index on the key field so that a second
// concurrent create for the same key is rejected by the server.
func (m *Mongo) EnsureUniqueKey(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: m.keyField, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(m.keyField + "_unique"),
	})
	if err != nil {
		return fmt.Errorf("create unique index on %s.%s: %w", m.coll.Name(), m.keyField, err)
	}
	return nil
}
