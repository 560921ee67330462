// Package inmemory provides a process-local Repository implementation with
// the same conditional-update semantics as the MongoDB store. It backs unit
// tests and is useful when running without a database.
package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/types/identity"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Repository struct {
	lands *LandRepository
	users *UserRepository
}

var _ repository.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		lands: &LandRepository{parcels: make(map[string]land.Parcel)},
		users: &UserRepository{users: make(map[string]identity.User)},
	}
}

func (r *Repository) Lands() repository.LandRepository {
	return r.lands
}

func (r *Repository) Users() repository.UserRepository {
	return r.users
}

func (r *Repository) TestConnection() error {
	return nil
}

type LandRepository struct {
	mu      sync.Mutex
	parcels map[string]land.Parcel // keyed by lower-cased landId hex
}

var _ repository.LandRepository = (*LandRepository)(nil)

func landKey(id land.LandID) string {
	return strings.ToLower(id.String())
}

func (r *LandRepository) Create(_ context.Context, parcel land.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := landKey(parcel.LandId)
	if _, exists := r.parcels[key]; exists {
		return repository.ErrDuplicateLandId
	}

	r.parcels[key] = parcel
	return nil
}

func (r *LandRepository) GetByLandId(_ context.Context, id land.LandID) (land.Parcel, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, found := r.parcels[landKey(id)]
	return parcel, found, nil
}

func (r *LandRepository) All(_ context.Context) ([]land.Parcel, error) {
	return r.filter(func(land.Parcel) bool { return true }), nil
}

func (r *LandRepository) FindByOwner(_ context.Context, walletAddress string) ([]land.Parcel, error) {
	return r.filter(func(p land.Parcel) bool {
		return land.SameWallet(p.WalletAddress, walletAddress)
	}), nil
}

func (r *LandRepository) FindMarketplace(_ context.Context, excludeOwner string) ([]land.Parcel, error) {
	return r.filter(func(p land.Parcel) bool {
		return p.Status == land.StatusVerified && !land.SameWallet(p.WalletAddress, excludeOwner)
	}), nil
}

func (r *LandRepository) FindNonVerified(_ context.Context) ([]land.Parcel, error) {
	return r.filter(func(p land.Parcel) bool {
		return p.Status == land.StatusPending
	}), nil
}

func (r *LandRepository) FindPendingRequestsForSeller(_ context.Context, walletAddress string) ([]land.Parcel, error) {
	return r.filter(func(p land.Parcel) bool {
		return land.SameWallet(p.WalletAddress, walletAddress) && p.HasPendingRequests()
	}), nil
}

func (r *LandRepository) FindAcceptedRequestsForBuyer(_ context.Context, walletAddress string) ([]land.Parcel, error) {
	return r.filter(func(p land.Parcel) bool {
		req, accepted := p.AcceptedRequest()
		return accepted && land.SameWallet(req.BuyerAddress, walletAddress)
	}), nil
}

func (r *LandRepository) AddPurchaseRequest(_ context.Context, id land.LandID, request land.PurchaseRequest) (land.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, found := r.parcels[landKey(id)]
	if !found {
		return land.Parcel{}, repository.ErrLandNotFound
	}

	if _, active := parcel.ActiveRequest(request.BuyerAddress); active {
		return land.Parcel{}, repository.ErrAlreadyRequested
	}

	parcel.PurchaseRequests = append(parcel.PurchaseRequests, request)
	r.parcels[landKey(id)] = parcel
	return parcel, nil
}

func (r *LandRepository) AcceptPurchaseRequest(_ context.Context, id land.LandID, buyerAddress string) (land.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, found := r.parcels[landKey(id)]
	if !found {
		return land.Parcel{}, repository.ErrLandNotFound
	}

	if _, accepted := parcel.AcceptedRequest(); accepted {
		return land.Parcel{}, repository.ErrRequestAlreadyAccepted
	}

	winnerIdx := -1
	for i, req := range parcel.PurchaseRequests {
		if land.SameWallet(req.BuyerAddress, buyerAddress) && req.Status == land.RequestStatusPending {
			winnerIdx = i
			break
		}
	}

	if winnerIdx == -1 {
		return land.Parcel{}, repository.ErrRequestNotFound
	}

	requests := make([]land.PurchaseRequest, len(parcel.PurchaseRequests))
	copy(requests, parcel.PurchaseRequests)
	for i := range requests {
		if i == winnerIdx {
			requests[i].Status = land.RequestStatusAccepted
		} else if requests[i].Status == land.RequestStatusPending {
			requests[i].Status = land.RequestStatusRejected
		}
	}

	parcel.PurchaseRequests = requests
	r.parcels[landKey(id)] = parcel
	return parcel, nil
}

func (r *LandRepository) MarkVerified(_ context.Context, id land.LandID, txHash land.TxHash, adminComments string, at time.Time) (land.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, found := r.parcels[landKey(id)]
	if !found {
		return land.Parcel{}, repository.ErrLandNotFound
	}

	if parcel.Status != land.StatusPending {
		return land.Parcel{}, repository.ErrStateConflict
	}

	parcel.Status = land.StatusVerified
	parcel.BlockchainVerified = true
	parcel.TxHash = txHash
	parcel.VerificationDate = &at
	parcel.AdminComments = adminComments

	r.parcels[landKey(id)] = parcel
	return parcel, nil
}

func (r *LandRepository) MarkRejected(_ context.Context, id land.LandID, adminComments string) (land.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, found := r.parcels[landKey(id)]
	if !found {
		return land.Parcel{}, repository.ErrLandNotFound
	}

	if parcel.Status != land.StatusPending {
		return land.Parcel{}, repository.ErrStateConflict
	}

	parcel.Status = land.StatusRejected
	parcel.AdminComments = adminComments

	r.parcels[landKey(id)] = parcel
	return parcel, nil
}

func (r *LandRepository) CompleteTransfer(_ context.Context, id land.LandID, transfer land.TransferRecord) (land.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, found := r.parcels[landKey(id)]
	if !found {
		return land.Parcel{}, repository.ErrLandNotFound
	}

	accepted, hasAccepted := parcel.AcceptedRequest()
	if !hasAccepted || !land.SameWallet(accepted.BuyerAddress, transfer.BuyerAddress) {
		return land.Parcel{}, repository.ErrRequestNotFound
	}

	if parcel.Status != land.StatusVerified {
		return land.Parcel{}, repository.ErrStateConflict
	}

	requests := make([]land.PurchaseRequest, len(parcel.PurchaseRequests))
	copy(requests, parcel.PurchaseRequests)
	for i := range requests {
		if requests[i].Status == land.RequestStatusPending {
			requests[i].Status = land.RequestStatusRejected
		}
	}

	at := transfer.At
	parcel.WalletAddress = transfer.BuyerAddress
	parcel.OwnerName = transfer.BuyerName
	parcel.Status = land.StatusSold
	parcel.Price = transfer.Price
	parcel.TxHash = transfer.TxHash
	parcel.TransferDate = &at
	parcel.PurchaseRequests = requests

	r.parcels[landKey(id)] = parcel
	return parcel, nil
}

func (r *LandRepository) Delete(_ context.Context, id land.LandID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := landKey(id)
	if _, found := r.parcels[key]; !found {
		return repository.ErrLandNotFound
	}

	delete(r.parcels, key)
	return nil
}

func (r *LandRepository) filter(predicate func(land.Parcel) bool) []land.Parcel {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := make([]land.Parcel, 0)
	for _, parcel := range r.parcels {
		if predicate(parcel) {
			matches = append(matches, parcel)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].RegistrationDate.After(matches[j].RegistrationDate)
	})

	return matches
}

type UserRepository struct {
	mu    sync.Mutex
	users map[string]identity.User // keyed by ObjectID hex
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user identity.User) (identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return identity.User{}, repository.ErrDuplicateUser
		}

		if user.WalletAddress != "" && land.SameWallet(existing.WalletAddress, user.WalletAddress) {
			return identity.User{}, repository.ErrDuplicateUser
		}
	}

	now := time.Now().UTC()
	user.Id = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = identity.RoleUser
	}

	r.users[user.Id.Hex()] = user
	return user, nil
}

func (r *UserRepository) GetById(_ context.Context, id string) (identity.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, found := r.users[id]
	return user, found, nil
}

func (r *UserRepository) GetByWallet(_ context.Context, walletAddress string) (identity.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.WalletAddress != "" && land.SameWallet(user.WalletAddress, walletAddress) {
			return user, true, nil
		}
	}

	return identity.User{}, false, nil
}

func (r *UserRepository) All(_ context.Context) ([]identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]identity.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

func (r *UserRepository) Update(_ context.Context, id string, update identity.UserUpdate) (identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, found := r.users[id]
	if !found {
		return identity.User{}, repository.ErrUserNotFound
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.WalletAddress != nil {
		user.WalletAddress = *update.WalletAddress
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	user.UpdatedAt = time.Now().UTC()

	r.users[id] = user
	return user, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.users[id]; !found {
		return repository.ErrUserNotFound
	}

	delete(r.users, id)
	return nil
}
