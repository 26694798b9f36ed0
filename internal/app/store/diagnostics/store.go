// internal/app/store/diagnostics/store.go
package diagnostics

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding diagnostic events.
const CollectionName = "diagnostics"

// Operations that produce diagnostics.
const (
	OpLoad    = "load"
	OpSubmit  = "submit"
	OpPreview = "preview"
)

// Event is one recorded outcome of a backend call.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Operation string `bson:"operation"`
	Success   bool   `bson:"success"`

	// Message is the human-readable outcome: the backend's message (or a
	// generic one) on failure, a short summary on success.
	Message string `bson:"message"`

	RecordID   string `bson:"record_id,omitempty"`
	RequestID  string `bson:"request_id,omitempty"`
	StatusCode int    `bson:"status_code,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter narrows a diagnostics query.
type QueryFilter struct {
	Operation string
	Success   *bool
	Since     *time.Time
	Limit     int64
}

// Store manages diagnostic event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new diagnostics Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// ttlIndexName names the timestamp index; it carries the retention TTL.
const ttlIndexName = "timestamp_ttl"

// EnsureIndexes creates the indexes used by the diagnostics page. A
// positive retention turns the timestamp index into a TTL index. When the
// retention changes between runs the existing index is updated in place
// (collMod) or, if TTL is being switched on or off, dropped and recreated.
func (s *Store) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	if err := s.ensureTimestampIndex(ctx, retention); err != nil {
		return err
	}
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "operation", Value: 1},
			{Key: "success", Value: 1},
			{Key: "timestamp", Value: -1},
		},
	})
	return err
}

func (s *Store) ensureTimestampIndex(ctx context.Context, retention time.Duration) error {
	var want int64
	if retention > 0 {
		want = int64(retention / time.Second)
		if want < 1 {
			want = 1
		}
	}

	current, found, err := s.timestampIndexTTL(ctx)
	if err != nil {
		return err
	}
	if found {
		switch {
		case current == want:
			return nil
		case current > 0 && want > 0:
			cmd := bson.D{
				{Key: "collMod", Value: CollectionName},
				{Key: "index", Value: bson.D{
					{Key: "name", Value: ttlIndexName},
					{Key: "expireAfterSeconds", Value: want},
				}},
			}
			return s.c.Database().RunCommand(ctx, cmd).Err()
		default:
			if _, err := s.c.Indexes().DropOne(ctx, ttlIndexName); err != nil {
				return err
			}
		}
	}

	opts := options.Index().SetName(ttlIndexName)
	if want > 0 {
		opts.SetExpireAfterSeconds(int32(want))
	}
	_, err = s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: 1}},
		Options: opts,
	})
	return err
}

// timestampIndexTTL reports the expireAfterSeconds of the timestamp index
// (0 when it has none) and whether the index exists at all.
func (s *Store) timestampIndexTTL(ctx context.Context) (int64, bool, error) {
	cursor, err := s.c.Indexes().List(ctx)
	if err != nil {
		// The collection may not exist yet.
		var ce mongo.CommandError
		if errors.As(err, &ce) && ce.Code == 26 {
			return 0, false, nil
		}
		return 0, false, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var spec struct {
			Name               string `bson:"name"`
			ExpireAfterSeconds *int64 `bson:"expireAfterSeconds"`
		}
		if err := cursor.Decode(&spec); err != nil {
			return 0, false, err
		}
		if spec.Name != ttlIndexName {
			continue
		}
		if spec.ExpireAfterSeconds == nil {
			return 0, true, nil
		}
		return *spec.ExpireAfterSeconds, true, nil
	}
	return 0, false, cursor.Err()
}

// Log records a diagnostic event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves events matching filter, most recent first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := bson.M{}
	if filter.Operation != "" {
		query["operation"] = filter.Operation
	}
	if filter.Success != nil {
		query["success"] = *filter.Success
	}
	if filter.Since != nil {
		query["timestamp"] = bson.M{"$gte": *filter.Since}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Recent retrieves the most recent events.
func (s *Store) Recent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}

// CountFailures returns the number of failed events since the given time.
func (s *Store) CountFailures(ctx context.Context, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"success":   false,
		"timestamp": bson.M{"$gte": since},
	})
}
