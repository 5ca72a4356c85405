package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBBackend stores runs in the `runs` collection. The full record is
// kept as a JSON string next to queryable summary fields.
type MongoDBBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
	uri        string
	dbName     string
}

type mongoRunDoc struct {
	ID         string    `bson:"id"`
	Scenario   string    `bson:"scenario"`
	Blueprint  string    `bson:"blueprint"`
	Status     string    `bson:"status"`
	StartedAt  time.Time `bson:"started_at"`
	DurationMS int64     `bson:"duration_ms"`
	Data       string    `bson:"data"`
}

// NewMongoDBBackend creates a MongoDB storage backend; Initialize connects.
func NewMongoDBBackend(uri, dbName string) (*MongoDBBackend, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if dbName == "" {
		dbName = "unrealmcp"
	}
	return &MongoDBBackend{uri: uri, dbName: dbName}, nil
}

// Initialize connects to MongoDB and ensures indexes.
func (m *MongoDBBackend) Initialize(ctx context.Context) error {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	clientOptions := options.Client().ApplyURI(m.uri)
	clientOptions.SetMaxPoolSize(10)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.collection = client.Database(m.dbName).Collection("runs")

	_, err = m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "started_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoDBBackend) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Health pings the primary.
func (m *MongoDBBackend) Health(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("mongodb not initialized")
	}
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *MongoDBBackend) SaveRun(ctx context.Context, run *RunRecord) error {
	if err := run.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}
	doc := mongoRunDoc{
		ID:         run.ID,
		Scenario:   run.Scenario,
		Blueprint:  run.Blueprint,
		Status:     run.Status,
		StartedAt:  run.StartedAt,
		DurationMS: run.DurationMS,
		Data:       string(data),
	}
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	_, err = m.collection.ReplaceOne(ctx, bson.M{"id": run.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

func (m *MongoDBBackend) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	var doc mongoRunDoc
	if err := m.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	var run RunRecord
	if err := json.Unmarshal([]byte(doc.Data), &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}
	return &run, nil
}

func (m *MongoDBBackend) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}, {Key: "id", Value: -1}}).
		SetLimit(int64(NormalizeLimit(limit))).
		SetProjection(bson.M{"data": 0})
	cur, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer cur.Close(ctx)

	out := []RunSummary{}
	for cur.Next(ctx) {
		var doc mongoRunDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode run: %w", err)
		}
		out = append(out, RunSummary{
			ID:         doc.ID,
			Scenario:   doc.Scenario,
			Blueprint:  doc.Blueprint,
			Status:     doc.Status,
			StartedAt:  doc.StartedAt,
			DurationMS: doc.DurationMS,
		})
	}
	return out, cur.Err()
}

func (m *MongoDBBackend) DeleteRun(ctx context.Context, id string) error {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	res, err := m.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return &ErrNotFound{Key: id}
	}
	return nil
}

// GetStorageStats returns storage statistics
func (m *MongoDBBackend) GetStorageStats(ctx context.Context) (StorageStats, error) {
	ctx, cancel := withStorageTimeout(ctx)
	defer cancel()
	stats := StorageStats{Backend: "mongodb", Healthy: true}
	total, err := m.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		stats.Healthy = false
		return stats, err
	}
	passed, _ := m.collection.CountDocuments(ctx, bson.M{"status": StatusPassed})
	failed, _ := m.collection.CountDocuments(ctx, bson.M{"status": StatusFailed})
	stats.RunCount = int(total)
	stats.PassedCount = int(passed)
	stats.FailedCount = int(failed)

	var latest mongoRunDoc
	err = m.collection.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})).Decode(&latest)
	if err == nil {
		t := latest.StartedAt
		stats.LastRunAt = &t
	}
	stats.Details = map[string]interface{}{"database": m.dbName}
	return stats, nil
}
