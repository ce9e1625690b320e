package board

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gridsnap/gridsnap/pkg/errors"
)

// MongoBoard implements Board over a MongoDB collection. It is meant for
// deployments where the board host persists widgets in MongoDB and gridsnap
// operates on that store directly rather than through the HTTP API.
//
// Notifications have no user surface here; they are logged.
type MongoBoard struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *log.Logger
}

// NewMongoBoard connects to MongoDB and verifies the connection with a ping.
// Items live in the given database and collection.
func NewMongoBoard(ctx context.Context, uri, database, collection string, logger *log.Logger) (*MongoBoard, error) {
	if logger == nil {
		logger = log.Default()
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping MongoDB")
	}
	return &MongoBoard{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}, nil
}

// Selection returns all items flagged as selected, ordered by ID.
func (b *MongoBoard) Selection(ctx context.Context) ([]*Item, error) {
	cur, err := b.coll.Find(ctx, bson.M{"selected": true},
		options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query selection")
	}
	defer cur.Close(ctx)

	var items []*Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode selection")
	}
	return items, nil
}

// Apply writes one mutation via a $set update. Unknown IDs fail with NOT_FOUND.
func (b *MongoBoard) Apply(ctx context.Context, m Mutation) error {
	set := bson.M{}
	if m.Title != nil {
		set["title"] = *m.Title
	}
	if m.X != nil {
		set["x"] = *m.X
	}
	if m.Y != nil {
		set["y"] = *m.Y
	}
	if m.W != nil {
		set["w"] = *m.W
	}
	if m.H != nil {
		set["h"] = *m.H
	}
	for k, v := range m.Meta {
		set["meta."+k] = v
	}
	if len(set) == 0 {
		return nil
	}

	res, err := b.coll.UpdateByID(ctx, m.ID, bson.M{"$set": set})
	if err != nil {
		return errors.Wrap(errors.ErrCodeCommitFailed, err, "update item %s", m.ID)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "no item with id %q", m.ID)
	}
	return nil
}

// CreateImage inserts a new image widget with a generated UUID.
func (b *MongoBoard) CreateImage(ctx context.Context, req CreateImageRequest) (*Item, error) {
	it := &Item{
		ID:     uuid.NewString(),
		Title:  req.Title,
		X:      req.X,
		Y:      req.Y,
		W:      req.W,
		H:      req.H,
		Source: req.Source,
		Meta:   req.Meta,
	}
	if _, err := b.coll.InsertOne(ctx, it); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommitFailed, err, "insert item")
	}
	return it, nil
}

// Notify logs the notification; the store has no user-facing channel.
func (b *MongoBoard) Notify(ctx context.Context, level NotifyLevel, message string) {
	if level == NotifyError {
		b.logger.Error(message)
		return
	}
	b.logger.Info(message)
}

// Close disconnects from MongoDB.
func (b *MongoBoard) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// Ensure MongoBoard implements Board.
var _ Board = (*MongoBoard)(nil)
