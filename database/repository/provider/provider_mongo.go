package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobnest/database"
	"jobnest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no provider matches the given id.
var ErrNotFound = errors.New("provider not found")

// ErrStaleStatus is returned when a conditional status update matched no
// document: another moderation action changed the provider first.
var ErrStaleStatus = errors.New("provider status changed since read")

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll      *mongo.Collection
	auditColl *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using MongoDB.
func NewMongoProviderRepo() ProviderRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	repo := &MongoProviderRepo{
		coll:      db.Collection("providers"),
		auditColl: db.Collection("provider_audit"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create provider indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoProviderRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := r.auditColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "at", Value: 1}}},
	})
	return err
}

// Create inserts a new provider document.
func (r *MongoProviderRepo) Create(provider *models.Provider) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, provider); err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}
	return nil
}

func (r *MongoProviderRepo) GetByID(id string) (*models.Provider, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var provider models.Provider
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	return &provider, nil
}

// UpdateStatus performs a conditional status swap and returns the updated
// provider document.
func (r *MongoProviderRepo) UpdateStatus(id string, oldStatus, newStatus models.ProviderStatus) (*models.Provider, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": oldStatus}
	update := bson.M{"$set": bson.M{"status": newStatus, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var provider models.Provider
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&provider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			count, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
			if countErr == nil && count == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrStaleStatus
		}
		return nil, fmt.Errorf("failed to update provider with id %s: %w", id, err)
	}
	return &provider, nil
}

// AppendAudit inserts an audit record. Audit documents are never updated or
// deleted.
func (r *MongoProviderRepo) AppendAudit(record *models.ProviderAudit) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.auditColl.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to append provider audit record: %w", err)
	}
	return nil
}

func (r *MongoProviderRepo) ListAudit(providerID string) ([]models.ProviderAudit, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	cursor, err := r.auditColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var records []models.ProviderAudit
	for cursor.Next(ctx) {
		var rec models.ProviderAudit
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode audit record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
