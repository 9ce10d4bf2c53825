package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legal-companion/internal/domain"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email,omitempty"`
	PasswordHash string             `bson:"password_hash"`
	IsVerified   bool               `bson:"is_verified"`
	IsAdmin      bool               `bson:"is_admin"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		IsVerified:   d.IsVerified,
		IsAdmin:      d.IsAdmin,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// MongoUserRepository implementa UserRepository sobre una coleccion de Mongo.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

func (r *MongoUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	doc := userDoc{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsVerified:   user.IsVerified,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.User{}, mapMongoErr(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.User{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return domain.User{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.User{}, mapMongoErr(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) UpdateEmail(ctx context.Context, id, email string, verified bool) error {
	return r.updateByID(ctx, id, bson.M{"email": email, "is_verified": verified})
}

func (r *MongoUserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	return r.updateByID(ctx, id, bson.M{"is_admin": isAdmin})
}

func (r *MongoUserRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context, q UserQuery) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := r.coll.Find(ctx, userFilter(q), opts)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cursor.Close(ctx)

	users := make([]domain.User, 0)
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.toDomain())
	}
	return users, cursor.Err()
}

func (r *MongoUserRepository) Count(ctx context.Context, q UserQuery) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, userFilter(q))
	return n, mapMongoErr(err)
}

func userFilter(q UserQuery) bson.M {
	filter := bson.M{}
	if q.UsernameContains != "" {
		filter["username"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.UsernameContains), Options: "i"}
	}
	if !q.CreatedSince.IsZero() {
		filter["created_at"] = bson.M{"$gte": q.CreatedSince}
	}
	if q.AdminsOnly {
		filter["is_admin"] = true
	}
	return filter
}
