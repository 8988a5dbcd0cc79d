package repositories

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollection = "messages"

// MongoMessageRepository stores one document per message, the same shape
// the chat front end has always read: {username, message, timestamp}.
type MongoMessageRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *slog.Logger
}

type mongoMessage struct {
	ObjectID  primitive.ObjectID `bson:"_id"`
	ID        string             `bson:"id,omitempty"`
	Username  string             `bson:"username"`
	Message   string             `bson:"message"`
	Timestamp time.Time          `bson:"timestamp"`
}

// NewMongoMessageRepository connects and pings the server once.
// Failing here is a startup failure for the caller.
func NewMongoMessageRepository(ctx context.Context, uri, database string, log *slog.Logger) (*MongoMessageRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("connect", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable("ping", err)
	}
	collection := client.Database(database).Collection(messageCollection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		log.Warn("Could not ensure timestamp index", "error", err)
	}
	return newMongoMessageRepository(client, collection, log), nil
}

func newMongoMessageRepository(client *mongo.Client, collection *mongo.Collection, log *slog.Logger) *MongoMessageRepository {
	return &MongoMessageRepository{client: client, collection: collection, log: log}
}

// Append inserts the message. ObjectIDs carry a per-process counter, so
// sorting on _id after timestamp keeps append order inside one millisecond.
func (m *MongoMessageRepository) Append(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	message = stamp(message)
	if _, err := m.collection.InsertOne(ctx, toDocument(message)); err != nil {
		return domain.ChatMessage{}, unavailable("insert", err)
	}
	return message, nil
}

func (m *MongoMessageRepository) RetrieveAll(ctx context.Context) ([]domain.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable("find", err)
	}
	var docs []mongoMessage
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode", err)
	}

	return lo.Map(docs, func(doc mongoMessage, _ int) domain.ChatMessage {
		return fromDocument(doc)
	}), nil
}

func toDocument(message domain.ChatMessage) mongoMessage {
	return mongoMessage{
		ObjectID:  primitive.NewObjectID(),
		ID:        message.ID.String(),
		Username:  message.Username,
		Message:   message.Body,
		Timestamp: message.Timestamp,
	}
}

// fromDocument accepts documents written by other tools, which carry no uuid:
// the id is then derived from _id so it stays stable across reads.
func fromDocument(doc mongoMessage) domain.ChatMessage {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(doc.ObjectID.Hex()))
	}
	return domain.ChatMessage{
		ID:        id,
		Username:  doc.Username,
		Body:      doc.Message,
		Timestamp: doc.Timestamp.UTC(),
	}
}

func (m *MongoMessageRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
