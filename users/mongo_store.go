package users

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"user-accounts-backend/apperror"
)

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(mongoClient *mongo.Client, databaseName, collectionName string) *MongoStore {
	return &MongoStore{
		collection: mongoClient.Database(databaseName).Collection(collectionName),
	}
}

// EnsureIndexes creates the unique email index the duplicate-email rule relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("role"),
		},
	})
	if err != nil {
		return errors.Wrap(err, "create user indexes")
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := s.collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperror.ErrUserNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &user, nil
}

func (s *MongoStore) Find(ctx context.Context, q Query) ([]User, error) {
	direction := 1
	if q.Descending {
		direction = -1
	}
	sort := bson.D{}
	if q.SortField != "" {
		sort = append(sort, bson.E{Key: q.SortField, Value: direction})
	}
	// ObjectID hex strings order by creation time, which also breaks ties.
	sort = append(sort, bson.E{Key: "_id", Value: direction})

	findOptions := options.Find().
		SetSort(sort).
		SetSkip(q.Skip)
	if q.Limit > 0 {
		findOptions.SetLimit(q.Limit)
	}

	cursor, err := s.collection.Find(ctx, mongoFilter(q.Filter), findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	defer cursor.Close(ctx)

	users := make([]User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

func (s *MongoStore) Count(ctx context.Context, f StoreFilter) (int64, error) {
	total, err := s.collection.CountDocuments(ctx, mongoFilter(f))
	if err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return total, nil
}

func (s *MongoStore) Insert(ctx context.Context, u *User) error {
	u.ID = primitive.NewObjectID().Hex()

	_, err := s.collection.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		u.ID = ""
		return apperror.ErrDuplicateEmail
	} else if err != nil {
		u.ID = ""
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, u *User) error {
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.ErrDuplicateEmail
	} else if err != nil {
		return errors.Wrap(err, "save user")
	}
	if result.MatchedCount == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if result.DeletedCount == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

func mongoFilter(f StoreFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
		}
	}
	return filter
}
