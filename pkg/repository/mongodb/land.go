package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const LandCollectionName = "lands"

const (
	keyLandId        = "land_id"
	keyWalletAddress = "wallet_address"
	keyStatus        = "status"
	keyRequests      = "purchase_requests"
	keyBuyerAddress  = "purchase_requests.buyer_address"
	keyRequestStatus = "purchase_requests.status"
)

type MongoLandRepository struct {
	logger     *zap.Logger
	collection *mongo.Collection
}

// Compile-time type validation
var (
	_ repository.LandRepository = (*MongoLandRepository)(nil)
	_ mongoCollection           = (*MongoLandRepository)(nil)
)

func NewMongoLandRepository(logger *zap.Logger, db *mongo.Database) *MongoLandRepository {
	return &MongoLandRepository{
		logger:     logger,
		collection: db.Collection(LandCollectionName),
	}
}

func (m *MongoLandRepository) InitSchema(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: keyLandId, Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(collationCaseInsensitive),
		},
		{
			Keys:    bson.D{{Key: keyWalletAddress, Value: 1}},
			Options: options.Index().SetCollation(collationCaseInsensitive),
		},
		{
			Keys: bson.D{{Key: keyStatus, Value: 1}},
		},
		{
			Keys: bson.D{{Key: keyBuyerAddress, Value: 1}},
		},
	})

	return err
}

func (m *MongoLandRepository) Create(ctx context.Context, parcel land.Parcel) error {
	if _, err := m.collection.InsertOne(ctx, parcel); err != nil {
		if isDuplicateKey(err) {
			return repository.ErrDuplicateLandId
		}

		return err
	}

	return nil
}

func (m *MongoLandRepository) GetByLandId(ctx context.Context, id land.LandID) (land.Parcel, bool, error) {
	var parcel land.Parcel

	filter := bson.D{{Key: keyLandId, Value: id}}
	opts := options.FindOne().SetCollation(collationCaseInsensitive)
	if err := m.collection.FindOne(ctx, filter, opts).Decode(&parcel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return land.Parcel{}, false, nil
		}

		return land.Parcel{}, false, err
	}

	return parcel, true, nil
}

func (m *MongoLandRepository) All(ctx context.Context) ([]land.Parcel, error) {
	return m.find(ctx, bson.D{})
}

func (m *MongoLandRepository) FindByOwner(ctx context.Context, walletAddress string) ([]land.Parcel, error) {
	return m.find(ctx, bson.D{{Key: keyWalletAddress, Value: walletAddress}})
}

func (m *MongoLandRepository) FindMarketplace(ctx context.Context, excludeOwner string) ([]land.Parcel, error) {
	return m.find(ctx, bson.D{
		{Key: keyStatus, Value: land.StatusVerified},
		{Key: keyWalletAddress, Value: bson.M{"$ne": excludeOwner}},
	})
}

func (m *MongoLandRepository) FindNonVerified(ctx context.Context) ([]land.Parcel, error) {
	return m.find(ctx, bson.D{{Key: keyStatus, Value: land.StatusPending}})
}

func (m *MongoLandRepository) FindPendingRequestsForSeller(ctx context.Context, walletAddress string) ([]land.Parcel, error) {
	return m.find(ctx, bson.D{{Key: "$and", Value: bson.A{
		bson.M{keyWalletAddress: walletAddress},
		bson.M{keyRequests: bson.M{"$elemMatch": bson.M{"status": land.RequestStatusPending}}},
		bson.M{keyRequests: bson.M{"$not": bson.M{"$elemMatch": bson.M{"status": land.RequestStatusAccepted}}}},
	}}})
}

func (m *MongoLandRepository) FindAcceptedRequestsForBuyer(ctx context.Context, walletAddress string) ([]land.Parcel, error) {
	return m.find(ctx, bson.D{{Key: keyRequests, Value: bson.M{"$elemMatch": bson.M{
		"buyer_address": strings.ToLower(walletAddress),
		"status":        land.RequestStatusAccepted,
	}}}})
}

func (m *MongoLandRepository) AddPurchaseRequest(ctx context.Context, id land.LandID, request land.PurchaseRequest) (land.Parcel, error) {
	// Request buyer addresses are stored lower-cased, so plain equality works
	// inside $elemMatch without collation.
	filter := bson.D{
		{Key: keyLandId, Value: id},
		{Key: keyRequests, Value: bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"buyer_address": request.BuyerAddress,
			"status":        bson.M{"$ne": land.RequestStatusRejected},
		}}}},
	}
	update := bson.M{"$push": bson.M{keyRequests: request}}

	opts := options.FindOneAndUpdate().
		SetCollation(collationCaseInsensitive).
		SetReturnDocument(options.After)

	var parcel land.Parcel
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&parcel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return land.Parcel{}, m.explainRequestConflict(ctx, id, request.BuyerAddress)
		}

		return land.Parcel{}, err
	}

	return parcel, nil
}

func (m *MongoLandRepository) AcceptPurchaseRequest(ctx context.Context, id land.LandID, buyerAddress string) (land.Parcel, error) {
	buyer := strings.ToLower(buyerAddress)

	// Single atomic document update: the filter refuses the write if any
	// request is already accepted, and the array filters flip the winner to
	// accepted and every other pending request to rejected together. A crash
	// can never leave two accepted requests behind.
	filter := bson.D{{Key: "$and", Value: bson.A{
		bson.M{keyLandId: id},
		bson.M{keyRequests: bson.M{"$not": bson.M{"$elemMatch": bson.M{"status": land.RequestStatusAccepted}}}},
		bson.M{keyRequests: bson.M{"$elemMatch": bson.M{"buyer_address": buyer, "status": land.RequestStatusPending}}},
	}}}
	update := bson.M{"$set": bson.M{
		"purchase_requests.$[winner].status": land.RequestStatusAccepted,
		"purchase_requests.$[other].status":  land.RequestStatusRejected,
	}}

	opts := options.FindOneAndUpdate().
		SetCollation(collationCaseInsensitive).
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"winner.buyer_address": buyer, "winner.status": land.RequestStatusPending},
				bson.M{"other.buyer_address": bson.M{"$ne": buyer}, "other.status": land.RequestStatusPending},
			},
		})

	var parcel land.Parcel
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&parcel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return land.Parcel{}, m.explainAcceptConflict(ctx, id, buyer)
		}

		return land.Parcel{}, err
	}

	return parcel, nil
}

func (m *MongoLandRepository) MarkVerified(ctx context.Context, id land.LandID, txHash land.TxHash, adminComments string, at time.Time) (land.Parcel, error) {
	filter := bson.D{{Key: keyLandId, Value: id}, {Key: keyStatus, Value: land.StatusPending}}
	update := bson.M{"$set": bson.M{
		"status":              land.StatusVerified,
		"blockchain_verified": true,
		"tx_hash":             txHash,
		"verification_date":   at,
		"admin_comments":      adminComments,
	}}

	return m.conditionalUpdate(ctx, id, filter, update, nil)
}

func (m *MongoLandRepository) MarkRejected(ctx context.Context, id land.LandID, adminComments string) (land.Parcel, error) {
	filter := bson.D{{Key: keyLandId, Value: id}, {Key: keyStatus, Value: land.StatusPending}}
	update := bson.M{"$set": bson.M{
		"status":         land.StatusRejected,
		"admin_comments": adminComments,
	}}

	return m.conditionalUpdate(ctx, id, filter, update, nil)
}

func (m *MongoLandRepository) CompleteTransfer(ctx context.Context, id land.LandID, transfer land.TransferRecord) (land.Parcel, error) {
	buyer := strings.ToLower(transfer.BuyerAddress)

	filter := bson.D{{Key: "$and", Value: bson.A{
		bson.M{keyLandId: id},
		bson.M{keyStatus: land.StatusVerified},
		bson.M{keyRequests: bson.M{"$elemMatch": bson.M{"buyer_address": buyer, "status": land.RequestStatusAccepted}}},
	}}}
	// Outstanding pending requests are retired, not deleted; the sale is
	// final but the offer history stays for audit.
	update := bson.M{"$set": bson.M{
		"wallet_address":                    transfer.BuyerAddress,
		"owner_name":                        transfer.BuyerName,
		"status":                            land.StatusSold,
		"price":                             transfer.Price,
		"tx_hash":                           transfer.TxHash,
		"transfer_date":                     transfer.At,
		"purchase_requests.$[stale].status": land.RequestStatusRejected,
	}}
	arrayFilters := &options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"stale.status": land.RequestStatusPending},
		},
	}

	parcel, err := m.conditionalUpdate(ctx, id, filter, update, arrayFilters)
	if err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return land.Parcel{}, m.explainTransferConflict(ctx, id, buyer)
		}

		return land.Parcel{}, err
	}

	return parcel, nil
}

func (m *MongoLandRepository) Delete(ctx context.Context, id land.LandID) error {
	opts := options.Delete().SetCollation(collationCaseInsensitive)
	res, err := m.collection.DeleteOne(ctx, bson.D{{Key: keyLandId, Value: id}}, opts)
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return repository.ErrLandNotFound
	}

	return nil
}

func (m *MongoLandRepository) find(ctx context.Context, filter bson.D) ([]land.Parcel, error) {
	opts := options.Find().
		SetCollation(collationCaseInsensitive).
		SetSort(bson.D{{Key: "registration_date", Value: -1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	parcels := make([]land.Parcel, 0)
	if err := cursor.All(ctx, &parcels); err != nil {
		return nil, err
	}

	return parcels, nil
}

func (m *MongoLandRepository) conditionalUpdate(
	ctx context.Context,
	id land.LandID,
	filter bson.D,
	update bson.M,
	arrayFilters *options.ArrayFilters,
) (land.Parcel, error) {
	opts := options.FindOneAndUpdate().
		SetCollation(collationCaseInsensitive).
		SetReturnDocument(options.After)
	if arrayFilters != nil {
		opts = opts.SetArrayFilters(*arrayFilters)
	}

	var parcel land.Parcel
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&parcel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, found, getErr := m.GetByLandId(ctx, id); getErr == nil && !found {
				return land.Parcel{}, repository.ErrLandNotFound
			}

			return land.Parcel{}, repository.ErrStateConflict
		}

		return land.Parcel{}, err
	}

	return parcel, nil
}

// explainRequestConflict reports why a guarded $push matched no document.
func (m *MongoLandRepository) explainRequestConflict(ctx context.Context, id land.LandID, buyer string) error {
	parcel, found, err := m.GetByLandId(ctx, id)
	if err != nil {
		return err
	}

	if !found {
		return repository.ErrLandNotFound
	}

	if _, active := parcel.ActiveRequest(buyer); active {
		return repository.ErrAlreadyRequested
	}

	return repository.ErrStateConflict
}

func (m *MongoLandRepository) explainAcceptConflict(ctx context.Context, id land.LandID, buyer string) error {
	parcel, found, err := m.GetByLandId(ctx, id)
	if err != nil {
		return err
	}

	if !found {
		return repository.ErrLandNotFound
	}

	if _, accepted := parcel.AcceptedRequest(); accepted {
		return repository.ErrRequestAlreadyAccepted
	}

	return repository.ErrRequestNotFound
}

func (m *MongoLandRepository) explainTransferConflict(ctx context.Context, id land.LandID, buyer string) error {
	parcel, found, err := m.GetByLandId(ctx, id)
	if err != nil {
		return err
	}

	if !found {
		return repository.ErrLandNotFound
	}

	if req, accepted := parcel.AcceptedRequest(); !accepted || !land.SameWallet(req.BuyerAddress, buyer) {
		return repository.ErrRequestNotFound
	}

	return repository.ErrStateConflict
}

func isDuplicateKey(err error) bool {
	var ex mongo.WriteException
	return errors.As(err, &ex) && len(ex.WriteErrors) > 0 && ex.WriteErrors[0].Code == 11000
}
