package mongodb

import (
	"context"
	"time"

	"github.com/smartlands/landregistry/pkg/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MongoRepository struct {
	database *mongo.Database
	lands    *MongoLandRepository
	users    *MongoUserRepository
}

var _ repository.Repository = (*MongoRepository)(nil)

type mongoCollection interface {
	InitSchema(ctx context.Context) error
}

// Hex strings compare case-insensitively under strength-1 collation, so
// wallet addresses match regardless of checksum casing.
var collationCaseInsensitive = &options.Collation{
	Locale:   "en",
	Strength: 1,
}

func NewMongoRepository(logger *zap.Logger, db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		database: db,
		lands:    NewMongoLandRepository(logger, db),
		users:    NewMongoUserRepository(logger, db),
	}
}

func (m *MongoRepository) InitSchema(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	cols := []mongoCollection{m.lands, m.users}
	for _, col := range cols {
		col := col
		group.Go(func() error {
			return col.InitSchema(ctx)
		})
	}

	return group.Wait()
}

func (m *MongoRepository) Lands() repository.LandRepository {
	return m.lands
}

func (m *MongoRepository) Users() repository.UserRepository {
	return m.users
}

func (m *MongoRepository) TestConnection() error {
	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Second*10)
	defer cancelFunc()

	return m.database.Client().Ping(ctx, nil)
}
