package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenMongoDatabase connects to TEST_MONGODB_URL and returns a database
// unique to the test, dropped on cleanup.
func OpenMongoDatabase(t *testing.T, prefix string) *mongo.Database {
	t.Helper()

	uri := strings.TrimSpace(os.Getenv("TEST_MONGODB_URL"))
	if uri == "" {
		t.Skip("TEST_MONGODB_URL not set; skipping MongoDB test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongodb: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping mongodb: %v", err)
	}

	// MongoDB database names are limited to 64 bytes; newSchemaName stays under 63.
	db := client.Database(newSchemaName(prefix))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	return db
}
