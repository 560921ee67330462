package repository

import (
	"context"
	"time"

	"github.com/smartlands/landregistry/pkg/types/identity"
	"github.com/smartlands/landregistry/pkg/types/land"
)

type Repository interface {
	Lands() LandRepository
	Users() UserRepository
	TestConnection() error
}

// LandRepository is the durable store for parcel documents. Write operations
// enforce the parcel invariants: landId uniqueness, forward-only status
// transitions and single-accepted-request, all via conditional single-document
// updates so that concurrent writers cannot observe partial state.
type LandRepository interface {
	Create(ctx context.Context, parcel land.Parcel) error
	GetByLandId(ctx context.Context, id land.LandID) (land.Parcel, bool, error)
	All(ctx context.Context) ([]land.Parcel, error)
	FindByOwner(ctx context.Context, walletAddress string) ([]land.Parcel, error)
	// FindMarketplace returns verified parcels owned by anyone but excludeOwner.
	FindMarketplace(ctx context.Context, excludeOwner string) ([]land.Parcel, error)
	FindNonVerified(ctx context.Context) ([]land.Parcel, error)
	// FindPendingRequestsForSeller returns the seller's parcels that have at
	// least one pending purchase request and no accepted one.
	FindPendingRequestsForSeller(ctx context.Context, walletAddress string) ([]land.Parcel, error)
	// FindAcceptedRequestsForBuyer returns parcels on which the buyer's
	// request has been accepted but the sale not yet completed.
	FindAcceptedRequestsForBuyer(ctx context.Context, walletAddress string) ([]land.Parcel, error)

	// AddPurchaseRequest appends a pending request. Fails with
	// ErrAlreadyRequested if the buyer already has a non-terminal request on
	// the parcel.
	AddPurchaseRequest(ctx context.Context, id land.LandID, request land.PurchaseRequest) (land.Parcel, error)
	// AcceptPurchaseRequest marks the buyer's pending request accepted and
	// retires every other pending request in the same atomic update. Fails
	// with ErrRequestAlreadyAccepted if any request on the parcel is already
	// accepted, so two concurrent accepts cannot both succeed.
	AcceptPurchaseRequest(ctx context.Context, id land.LandID, buyerAddress string) (land.Parcel, error)

	// MarkVerified moves a pending parcel to verified, stamping the ledger
	// provenance markers. Conditional on the parcel still being pending.
	MarkVerified(ctx context.Context, id land.LandID, txHash land.TxHash, adminComments string, at time.Time) (land.Parcel, error)
	// MarkRejected moves a pending parcel to rejected. Off-chain only.
	MarkRejected(ctx context.Context, id land.LandID, adminComments string) (land.Parcel, error)
	// CompleteTransfer commits the outcome of a confirmed on-chain sale:
	// rewrites ownership, stamps sold status and retires outstanding
	// requests, conditional on the parcel being verified with the buyer's
	// request accepted.
	CompleteTransfer(ctx context.Context, id land.LandID, transfer land.TransferRecord) (land.Parcel, error)

	Delete(ctx context.Context, id land.LandID) error
}

type UserRepository interface {
	Create(ctx context.Context, user identity.User) (identity.User, error)
	GetById(ctx context.Context, id string) (identity.User, bool, error)
	// GetByWallet matches the wallet address case-insensitively.
	GetByWallet(ctx context.Context, walletAddress string) (identity.User, bool, error)
	All(ctx context.Context) ([]identity.User, error)
	Update(ctx context.Context, id string, update identity.UserUpdate) (identity.User, error)
	Delete(ctx context.Context, id string) error
}
