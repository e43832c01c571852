package forms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoJournal keeps a local record of every submission the site relays,
// since the spreadsheet endpoint gives no confirmation back.
type MongoJournal struct {
	collection *mongo.Collection
}

type journalEntry struct {
	ID         string            `bson:"_id"`
	FormType   string            `bson:"form_type"`
	Fields     map[string]string `bson:"fields"`
	ReceivedAt time.Time         `bson:"received_at"`
}

func NewMongoJournal(db *mongo.Database) *MongoJournal {
	return &MongoJournal{collection: db.Collection("form_submissions")}
}

func (j *MongoJournal) Record(ctx context.Context, sub Submission) error {
	entry := journalEntry{
		ID:         uuid.New().String(),
		FormType:   sub.FormType,
		Fields:     sub.Fields,
		ReceivedAt: time.Now(),
	}
	if _, err := j.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to journal submission: %w", err)
	}
	return nil
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
