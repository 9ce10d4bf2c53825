package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legal-companion/internal/domain"
)

type otpDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Code      string             `bson:"otp_code"`
	IsUsed    bool               `bson:"is_used"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d otpDoc) toDomain() domain.OTP {
	return domain.OTP{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Code:      d.Code,
		IsUsed:    d.IsUsed,
		ExpiresAt: d.ExpiresAt.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// MongoOTPRepository implementa OTPRepository sobre Mongo.
type MongoOTPRepository struct {
	coll *mongo.Collection
}

func NewMongoOTPRepository(coll *mongo.Collection) *MongoOTPRepository {
	return &MongoOTPRepository{coll: coll}
}

func (r *MongoOTPRepository) Create(ctx context.Context, otp domain.OTP) (domain.OTP, error) {
	doc := otpDoc{
		Email:     otp.Email,
		Code:      otp.Code,
		IsUsed:    otp.IsUsed,
		ExpiresAt: otp.ExpiresAt,
		CreatedAt: otp.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.OTP{}, mapMongoErr(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.OTP{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *MongoOTPRepository) FindUnused(ctx context.Context, email, code string) (domain.OTP, error) {
	var doc otpDoc
	filter := bson.M{"email": email, "otp_code": code, "is_used": false}
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.OTP{}, mapMongoErr(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoOTPRepository) MarkUsed(ctx context.Context, id string) error {
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "is_used": false},
		bson.M{"$set": bson.M{"is_used": true}},
	)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoOTPRepository) CountCreatedSince(ctx context.Context, email string, since time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email, "created_at": bson.M{"$gte": since}})
	return n, mapMongoErr(err)
}

func (r *MongoOTPRepository) HasPending(ctx context.Context, email string, now time.Time) (bool, error) {
	filter := bson.M{"email": email, "is_used": false, "expires_at": bson.M{"$gt": now}}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, mapMongoErr(err)
	}
	return n > 0, nil
}

func (r *MongoOTPRepository) DeleteUnused(ctx context.Context, email string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"email": email, "is_used": false})
	if err != nil {
		return 0, mapMongoErr(err)
	}
	return res.DeletedCount, nil
}

func (r *MongoOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, mapMongoErr(err)
	}
	return res.DeletedCount, nil
}

func (r *MongoOTPRepository) Delete(ctx context.Context, id string) error {
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
