package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/types/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const UserCollectionName = "users"

type MongoUserRepository struct {
	logger     *zap.Logger
	collection *mongo.Collection
}

// Compile-time type validation
var (
	_ repository.UserRepository = (*MongoUserRepository)(nil)
	_ mongoCollection           = (*MongoUserRepository)(nil)
)

func NewMongoUserRepository(logger *zap.Logger, db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		logger:     logger,
		collection: db.Collection(UserCollectionName),
	}
}

func (m *MongoUserRepository) InitSchema(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(collationCaseInsensitive),
		},
		{
			// Sparse: wallet address is optional at sign-up, uniqueness only
			// applies once one is attached.
			Keys: bson.D{{Key: "wallet_address", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetSparse(true).
				SetCollation(collationCaseInsensitive),
		},
	})

	return err
}

func (m *MongoUserRepository) Create(ctx context.Context, user identity.User) (identity.User, error) {
	now := time.Now().UTC()
	user.Id = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = identity.RoleUser
	}

	if _, err := m.collection.InsertOne(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return identity.User{}, repository.ErrDuplicateUser
		}

		return identity.User{}, err
	}

	return user, nil
}

func (m *MongoUserRepository) GetById(ctx context.Context, id string) (identity.User, bool, error) {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return identity.User{}, false, repository.ErrUserNotFound
	}

	var user identity.User
	if err := m.collection.FindOne(ctx, bson.D{{Key: "_id", Value: objectId}}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return identity.User{}, false, nil
		}

		return identity.User{}, false, err
	}

	return user, true, nil
}

func (m *MongoUserRepository) GetByWallet(ctx context.Context, walletAddress string) (identity.User, bool, error) {
	var user identity.User

	filter := bson.D{{Key: "wallet_address", Value: walletAddress}}
	opts := options.FindOne().SetCollation(collationCaseInsensitive)
	if err := m.collection.FindOne(ctx, filter, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return identity.User{}, false, nil
		}

		return identity.User{}, false, err
	}

	return user, true, nil
}

func (m *MongoUserRepository) All(ctx context.Context) ([]identity.User, error) {
	cursor, err := m.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	users := make([]identity.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (m *MongoUserRepository) Update(ctx context.Context, id string, update identity.UserUpdate) (identity.User, error) {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return identity.User{}, repository.ErrUserNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.WalletAddress != nil {
		set["wallet_address"] = *update.WalletAddress
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user identity.User
	if err := m.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: objectId}}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return identity.User{}, repository.ErrUserNotFound
		}

		if isDuplicateKey(err) {
			return identity.User{}, repository.ErrDuplicateUser
		}

		return identity.User{}, err
	}

	return user, nil
}

func (m *MongoUserRepository) Delete(ctx context.Context, id string) error {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrUserNotFound
	}

	res, err := m.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: objectId}})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}
