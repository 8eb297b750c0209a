package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/blog-api/internal/models"
)

// userDoc and postDoc are the persisted document shapes; they never leave
// this file.
type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Password    string             `bson:"password"`
	PhoneNumber string             `bson:"phoneNumber,omitempty"`
	Address     string             `bson:"address,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Email:       d.Email,
		Password:    d.Password,
		PhoneNumber: d.PhoneNumber,
		Address:     d.Address,
		CreatedAt:   d.CreatedAt,
	}
}

type postDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Content    string             `bson:"content"`
	Author     string             `bson:"author"`
	CoverImage string             `bson:"coverImage,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d *postDoc) model() *models.Post {
	return &models.Post{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Content:       d.Content,
		Author:        d.Author,
		CoverImageKey: d.CoverImage,
		CreatedAt:     d.CreatedAt,
	}
}

// MongoStore handles user and post CRUD in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	posts *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{users: db.Collection("users"), posts: db.Collection("posts")}
}

// EnsureIndexes creates the unique email index and the recency index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}
	_, err = s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo posts index: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	doc := userDoc{
		ID:          primitive.NewObjectID(),
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicate
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	return doc.model(), nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.model(), nil
}

func (s *MongoStore) FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("mongo find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].model())
	}
	return out, nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	set := bson.M{}
	setIf(set, "name", upd.Name)
	setIf(set, "email", upd.Email)
	setIf(set, "password", upd.Password)
	setIf(set, "phoneNumber", upd.PhoneNumber)
	setIf(set, "address", upd.Address)
	if len(set) == 0 {
		return s.findUser(ctx, bson.M{"_id": oid})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrDuplicate
		}
		return nil, notFound(err)
	}
	return doc.model(), nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc userDoc
	if err := s.users.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.model(), nil
}

// ---------------------------------------------------------------------------
// Posts
// ---------------------------------------------------------------------------

func (s *MongoStore) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	doc := postDoc{
		ID:         primitive.NewObjectID(),
		Title:      p.Title,
		Content:    p.Content,
		Author:     p.Author,
		CoverImage: p.CoverImageKey,
		CreatedAt:  p.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("mongo insert post: %w", err)
	}
	return doc.model(), nil
}

func (s *MongoStore) FindPostByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.model(), nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	set := bson.M{}
	setIf(set, "title", upd.Title)
	setIf(set, "content", upd.Content)
	setIf(set, "coverImage", upd.CoverImageKey)
	if len(set) == 0 {
		return s.FindPostByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDoc
	if err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.model(), nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc postDoc
	if err := s.posts.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.model(), nil
}

// ListLatestPosts returns up to limit posts, newest first, after skipping skip.
func (s *MongoStore) ListLatestPosts(ctx context.Context, skip, limit int) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	cur, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].model())
	}
	return out, nil
}

func setIf(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = *v
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}
