package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devfolio/portfolio/backend/internal/contact"
)

// MongoRepo implements Repository on a MongoDB collection. Records are keyed
// by ObjectID; the API exposes the hex form.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

var _ Repository = (*MongoRepo)(nil)

// document is the stored shape of a contact.
type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Company   string             `bson:"company"`
	Message   string             `bson:"message"`
	IP        string             `bson:"ip,omitempty"`
	UserAgent string             `bson:"userAgent,omitempty"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *document) contact() *contact.Contact {
	return &contact.Contact{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Company:   d.Company,
		Message:   d.Message,
		SourceIP:  d.IP,
		UserAgent: d.UserAgent,
		Status:    contact.Status(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

// publicProjection drops the fields that must never leave the store.
var publicProjection = bson.M{"ip": 0, "userAgent": 0}

// EnsureIndexes creates the indexes used by listing and stats.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create contact indexes: %w", err)
	}
	return nil
}

func filterDoc(f contact.Filter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	return q
}

func (m *MongoRepo) Insert(ctx context.Context, c *contact.Contact) (string, error) {
	doc := document{
		ID:        primitive.NewObjectID(),
		Name:      c.Name,
		Email:     c.Email,
		Company:   c.Company,
		Message:   c.Message,
		IP:        c.SourceIP,
		UserAgent: c.UserAgent,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert contact: %w", err)
	}
	c.ID = doc.ID.Hex()
	return c.ID, nil
}

func (m *MongoRepo) List(ctx context.Context, f contact.Filter, skip, limit int64) ([]*contact.Contact, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(publicProjection)
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := m.col.Find(ctx, filterDoc(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	defer cur.Close(ctx)

	out := []*contact.Contact{}
	for cur.Next(ctx) {
		var d document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode contact: %w", err)
		}
		out = append(out, d.contact())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}

func (m *MongoRepo) Count(ctx context.Context, f contact.Filter) (int64, error) {
	n, err := m.col.CountDocuments(ctx, filterDoc(f))
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

func (m *MongoRepo) UpdateStatus(ctx context.Context, id string, s contact.Status) (*contact.Contact, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicProjection)
	var d document
	err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": string(s)}}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update contact status: %w", err)
	}
	return d.contact(), nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats runs a single $facet aggregation so every count comes from the same
// pass over the collection.
func (m *MongoRepo) Stats(ctx context.Context, since time.Time) (contact.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"byStatus": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
			},
			"lastWeek": bson.A{
				bson.M{"$match": bson.M{"createdAt": bson.M{"$gte": since}}},
				bson.M{"$count": "n"},
			},
		}}},
	}
	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return contact.Stats{}, fmt.Errorf("aggregate contact stats: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ByStatus []struct {
			Status string `bson:"_id"`
			N      int64  `bson:"n"`
		} `bson:"byStatus"`
		LastWeek []struct {
			N int64 `bson:"n"`
		} `bson:"lastWeek"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return contact.Stats{}, fmt.Errorf("decode contact stats: %w", err)
	}

	var st contact.Stats
	if len(rows) == 0 {
		return st, nil
	}
	for _, b := range rows[0].ByStatus {
		switch contact.Status(b.Status) {
		case contact.StatusNew:
			st.New = b.N
		case contact.StatusRead:
			st.Read = b.N
		case contact.StatusReplied:
			st.Replied = b.N
		}
	}
	if len(rows[0].LastWeek) > 0 {
		st.LastWeek = rows[0].LastWeek[0].N
	}
	st.Total = st.New + st.Read + st.Replied
	return st, nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}
