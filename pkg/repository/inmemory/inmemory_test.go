package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/types/identity"
	"github.com/smartlands/landregistry/pkg/types/land"
	"github.com/stretchr/testify/require"
)

const (
	sellerAddress = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	buyerAddress  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	otherAddress  = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func newParcel(t *testing.T, status land.Status, surveyNumber int64) land.Parcel {
	t.Helper()

	id, err := land.DeriveLandID(1200, "Madurai", "Melur", "Kottampatti", 4, surveyNumber)
	require.NoError(t, err)

	price, err := land.PriceFromString("1.25")
	require.NoError(t, err)

	return land.Parcel{
		LandId:           id,
		OwnerName:        "Sam Seller",
		WalletAddress:    sellerAddress,
		LandArea:         1200,
		District:         "Madurai",
		Taluk:            "Melur",
		Village:          "Kottampatti",
		BlockNumber:      4,
		SurveyNumber:     surveyNumber,
		Price:            price,
		Status:           status,
		PurchaseRequests: []land.PurchaseRequest{},
		RegistrationDate: time.Now().UTC(),
	}
}

func seedParcel(t *testing.T, repo *Repository, status land.Status, surveyNumber int64) land.Parcel {
	t.Helper()

	parcel := newParcel(t, status, surveyNumber)
	require.NoError(t, repo.Lands().Create(context.Background(), parcel))
	return parcel
}

func TestCreateDuplicate(t *testing.T) {
	repo := NewRepository()
	parcel := seedParcel(t, repo, land.StatusPending, 1)

	err := repo.Lands().Create(context.Background(), parcel)
	require.ErrorIs(t, err, repository.ErrDuplicateLandId)
}

func TestMarketplaceExcludesOwner(t *testing.T) {
	repo := NewRepository()
	seedParcel(t, repo, land.StatusVerified, 1)
	seedParcel(t, repo, land.StatusPending, 2)

	parcels, err := repo.Lands().FindMarketplace(context.Background(), buyerAddress)
	require.NoError(t, err)
	require.Len(t, parcels, 1)

	parcels, err = repo.Lands().FindMarketplace(context.Background(), sellerAddress)
	require.NoError(t, err)
	require.Empty(t, parcels)
}

func TestAddPurchaseRequestGuard(t *testing.T) {
	repo := NewRepository()
	parcel := seedParcel(t, repo, land.StatusVerified, 1)

	_, err := repo.Lands().AddPurchaseRequest(context.Background(), parcel.LandId,
		land.NewPurchaseRequest(buyerAddress, "Bea Buyer", ""))
	require.NoError(t, err)

	_, err = repo.Lands().AddPurchaseRequest(context.Background(), parcel.LandId,
		land.NewPurchaseRequest(buyerAddress, "Bea Buyer", "again"))
	require.ErrorIs(t, err, repository.ErrAlreadyRequested)
}

func TestAcceptSupersedesOthers(t *testing.T) {
	repo := NewRepository()
	parcel := seedParcel(t, repo, land.StatusVerified, 1)

	for _, buyer := range []string{buyerAddress, otherAddress} {
		_, err := repo.Lands().AddPurchaseRequest(context.Background(), parcel.LandId,
			land.NewPurchaseRequest(buyer, "Buyer", ""))
		require.NoError(t, err)
	}

	updated, err := repo.Lands().AcceptPurchaseRequest(context.Background(), parcel.LandId, buyerAddress)
	require.NoError(t, err)

	accepted, found := updated.AcceptedRequest()
	require.True(t, found)
	require.True(t, land.SameWallet(buyerAddress, accepted.BuyerAddress))

	for _, req := range updated.PurchaseRequests {
		if !land.SameWallet(req.BuyerAddress, buyerAddress) {
			require.Equal(t, land.RequestStatusRejected, req.Status)
		}
	}

	_, err = repo.Lands().AcceptPurchaseRequest(context.Background(), parcel.LandId, otherAddress)
	require.ErrorIs(t, err, repository.ErrRequestAlreadyAccepted)
}

func TestAcceptWithoutRequest(t *testing.T) {
	repo := NewRepository()
	parcel := seedParcel(t, repo, land.StatusVerified, 1)

	_, err := repo.Lands().AcceptPurchaseRequest(context.Background(), parcel.LandId, buyerAddress)
	require.ErrorIs(t, err, repository.ErrRequestNotFound)
}

func TestMarkVerifiedIsConditional(t *testing.T) {
	repo := NewRepository()
	parcel := seedParcel(t, repo, land.StatusPending, 1)

	txHash := make(land.TxHash, 32)
	txHash[0] = 0x01

	verified, err := repo.Lands().MarkVerified(context.Background(), parcel.LandId, txHash, "ok", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, land.StatusVerified, verified.Status)
	require.True(t, verified.BlockchainVerified)

	_, err = repo.Lands().MarkVerified(context.Background(), parcel.LandId, txHash, "ok", time.Now().UTC())
	require.ErrorIs(t, err, repository.ErrStateConflict)
}

func TestCompleteTransfer(t *testing.T) {
	repo := NewRepository()
	parcel := seedParcel(t, repo, land.StatusVerified, 1)

	_, err := repo.Lands().AddPurchaseRequest(context.Background(), parcel.LandId,
		land.NewPurchaseRequest(buyerAddress, "Bea Buyer", ""))
	require.NoError(t, err)

	_, err = repo.Lands().AcceptPurchaseRequest(context.Background(), parcel.LandId, buyerAddress)
	require.NoError(t, err)

	txHash := make(land.TxHash, 32)
	txHash[0] = 0x02

	sold, err := repo.Lands().CompleteTransfer(context.Background(), parcel.LandId, land.TransferRecord{
		BuyerAddress: buyerAddress,
		BuyerName:    "Bea Buyer",
		TxHash:       txHash,
		Price:        parcel.Price,
		At:           time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, land.StatusSold, sold.Status)
	require.True(t, land.SameWallet(buyerAddress, sold.WalletAddress))
	require.NotNil(t, sold.TransferDate)

	// Sold parcels cannot be transferred again.
	_, err = repo.Lands().CompleteTransfer(context.Background(), parcel.LandId, land.TransferRecord{
		BuyerAddress: buyerAddress,
		At:           time.Now().UTC(),
	})
	require.ErrorIs(t, err, repository.ErrStateConflict)
}

func TestCompleteTransferRequiresAcceptedBuyer(t *testing.T) {
	repo := NewRepository()
	parcel := seedParcel(t, repo, land.StatusVerified, 1)

	_, err := repo.Lands().AddPurchaseRequest(context.Background(), parcel.LandId,
		land.NewPurchaseRequest(buyerAddress, "Bea Buyer", ""))
	require.NoError(t, err)

	_, err = repo.Lands().AcceptPurchaseRequest(context.Background(), parcel.LandId, buyerAddress)
	require.NoError(t, err)

	_, err = repo.Lands().CompleteTransfer(context.Background(), parcel.LandId, land.TransferRecord{
		BuyerAddress: otherAddress,
		At:           time.Now().UTC(),
	})
	require.ErrorIs(t, err, repository.ErrRequestNotFound)
}

func TestUserDuplicates(t *testing.T) {
	repo := NewRepository()

	created, err := repo.Users().Create(context.Background(), identity.User{
		Name:          "Citizen",
		Email:         "citizen@example.com",
		WalletAddress: buyerAddress,
	})
	require.NoError(t, err)
	require.Equal(t, identity.RoleUser, created.Role)

	_, err = repo.Users().Create(context.Background(), identity.User{
		Name:  "Twin",
		Email: "CITIZEN@example.com",
	})
	require.ErrorIs(t, err, repository.ErrDuplicateUser)

	_, err = repo.Users().Create(context.Background(), identity.User{
		Name:          "Wallet Twin",
		Email:         "twin@example.com",
		WalletAddress: "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
	})
	require.ErrorIs(t, err, repository.ErrDuplicateUser)

	found, ok, err := repo.Users().GetByWallet(context.Background(), "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, created.Id, found.Id)
}
