// Package orchestrator sequences the dual writes that keep the off-chain
// store and the ledger consistent. The ordering rule is fixed: the ledger is
// written first and the off-chain record is only marked verified once the
// chain write is confirmed, so the store never claims verification the ledger
// cannot back. Unconfirmed submissions are journalled and replayed by
// Reconcile.
package orchestrator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/pkg/ledger"
	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/state"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

type Orchestrator struct {
	config     config.Config
	logger     *zap.Logger
	repository repository.Repository
	ledger     ledger.Ledger
	journal    state.Store
}

func New(
	config config.Config,
	logger *zap.Logger,
	repository repository.Repository,
	ledgerClient ledger.Ledger,
	journal state.Store,
) *Orchestrator {
	return &Orchestrator{
		config:     config,
		logger:     logger,
		repository: repository,
		ledger:     ledgerClient,
		journal:    journal,
	}
}

// Approve registers a pending parcel on the ledger and, once the chain write
// is confirmed, marks the off-chain record verified. A ledger failure leaves
// the record pending so the admin can retry; a submission whose confirmation
// was not observed leaves a journal entry for Reconcile to finish. Approving a parcel that is already
// on-chain (a previous attempt whose confirmation was missed) completes the
// off-chain half without submitting anything.
func (o *Orchestrator) Approve(ctx context.Context, id land.LandID, adminComments string) (land.Parcel, error) {
	parcel, found, err := o.repository.Lands().GetByLandId(ctx, id)
	if err != nil {
		return land.Parcel{}, err
	}

	if !found {
		return land.Parcel{}, repository.ErrLandNotFound
	}

	if parcel.Status != land.StatusPending {
		return land.Parcel{}, errors.Wrapf(repository.ErrStateConflict, "parcel is %s, not pending", parcel.Status)
	}

	derived, err := parcel.DerivedId()
	if err != nil {
		return land.Parcel{}, err
	}

	if !derived.Equal(parcel.LandId) {
		return land.Parcel{}, ErrIdMismatch
	}

	exists, err := o.ledger.LandExists(ctx, id)
	if err != nil {
		return land.Parcel{}, err
	}

	if exists {
		o.logger.Info("Parcel already registered on the ledger, completing off-chain verification only",
			zap.Stringer("land_id", id))
		return o.completeVerification(ctx, id, o.recoverTxHash(ctx, id), adminComments)
	}

	entry := state.NewPendingRegistration(id, time.Now())
	if err := o.journal.PutPendingRegistration(ctx, entry); err != nil {
		return land.Parcel{}, err
	}

	handle, err := o.ledger.SubmitRegistration(ctx, parcel)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAlreadyRegistered):
			// Lost a race with an earlier submission that did land.
			return o.completeVerification(ctx, id, o.recoverTxHash(ctx, id), adminComments)
		case errors.Is(err, ledger.ErrConfirmationPending),
			len(handle.Hash) != 0 && !errors.Is(err, ledger.ErrChainRejected):
			// The transaction went out before the failure, so its status is
			// unknown. Keep the journal entry, now with the hash, so Reconcile
			// can finish the off-chain half.
			entry.TxHash = handle.Hash
			if journalErr := o.journal.PutPendingRegistration(ctx, entry); journalErr != nil {
				o.logger.Error("Failed to record in-flight registration", zap.Error(journalErr),
					zap.Stringer("land_id", id))
			}

			return land.Parcel{}, err
		default:
			// Nothing reached the chain, or the transaction definitively
			// reverted; the record stays pending.
			if journalErr := o.journal.RemovePendingRegistration(ctx, id); journalErr != nil {
				o.logger.Error("Failed to clear registration journal entry", zap.Error(journalErr),
					zap.Stringer("land_id", id))
			}

			return land.Parcel{}, err
		}
	}

	entry.TxHash = handle.Hash
	if err := o.journal.PutPendingRegistration(ctx, entry); err != nil {
		o.logger.Error("Failed to record confirmed registration before off-chain commit", zap.Error(err),
			zap.Stringer("land_id", id))
	}

	return o.completeVerification(ctx, id, handle.Hash, adminComments)
}

// Reject refuses a pending parcel. Off-chain only: nothing was ever written
// to the ledger for an unverified record.
func (o *Orchestrator) Reject(ctx context.Context, id land.LandID, adminComments string) (land.Parcel, error) {
	return o.repository.Lands().MarkRejected(ctx, id, adminComments)
}

// CompleteTransfer reconciles the off-chain record after a buyer has paid for
// an accepted parcel on-chain. The payment has already happened; this call is
// bookkeeping and therefore idempotent: replaying it with the same
// transaction hash on an already-sold parcel succeeds without changing
// anything.
func (o *Orchestrator) CompleteTransfer(ctx context.Context, id land.LandID, buyerAddress string, txHash land.TxHash) (land.Parcel, error) {
	parcel, found, err := o.repository.Lands().GetByLandId(ctx, id)
	if err != nil {
		return land.Parcel{}, err
	}

	if !found {
		return land.Parcel{}, repository.ErrLandNotFound
	}

	if parcel.Status == land.StatusSold && parcel.TxHash.Equal(txHash) {
		return parcel, nil
	}

	accepted, ok := parcel.AcceptedRequest()
	if !ok {
		return land.Parcel{}, errors.Wrap(ErrTransferMismatch, "parcel has no accepted purchase request")
	}

	if !land.SameWallet(accepted.BuyerAddress, buyerAddress) {
		return land.Parcel{}, ErrTransferMismatch
	}

	transfer := land.TransferRecord{
		BuyerAddress: accepted.BuyerAddress,
		BuyerName:    accepted.BuyerName,
		TxHash:       txHash,
		Price:        parcel.Price,
		At:           time.Now().UTC(),
	}

	return o.repository.Lands().CompleteTransfer(ctx, id, transfer)
}

// Reconcile replays the pending-registration journal. For each entry the
// ledger is the source of truth: if the id now exists on-chain the off-chain
// record is marked verified and the entry cleared; if it never appeared and
// the entry has outlived the abandon window it is dropped, leaving the record
// pending for the admin to retry.
func (o *Orchestrator) Reconcile(ctx context.Context) error {
	pending, err := o.journal.PendingRegistrations(ctx)
	if err != nil {
		return err
	}

	for _, entry := range pending {
		exists, err := o.ledger.LandExists(ctx, entry.LandId)
		if err != nil {
			o.logger.Warn("Ledger unavailable during reconciliation, will retry",
				zap.Error(err), zap.Stringer("land_id", entry.LandId))
			continue
		}

		if exists {
			txHash := entry.TxHash
			if len(txHash) == 0 {
				txHash = o.recoverTxHash(ctx, entry.LandId)
			}

			if _, err := o.repository.Lands().MarkVerified(ctx, entry.LandId, txHash, "", time.Now().UTC()); err != nil {
				// Already verified by a concurrent path is fine; anything
				// else keeps the entry for the next scan.
				if !errors.Is(err, repository.ErrStateConflict) && !errors.Is(err, repository.ErrLandNotFound) {
					o.logger.Error("Failed to complete reconciled verification", zap.Error(err),
						zap.Stringer("land_id", entry.LandId))
					continue
				}
			} else {
				o.logger.Info("Reconciled registration confirmed on the ledger",
					zap.Stringer("land_id", entry.LandId))
			}

			if err := o.journal.RemovePendingRegistration(ctx, entry.LandId); err != nil {
				o.logger.Error("Failed to clear registration journal entry", zap.Error(err),
					zap.Stringer("land_id", entry.LandId))
			}

			continue
		}

		if time.Since(entry.SubmittedAt) > o.config.Reconcile.AbandonAfter.Duration() {
			o.logger.Warn("Abandoning unconfirmed registration, parcel remains pending",
				zap.Stringer("land_id", entry.LandId),
				zap.Time("submitted_at", entry.SubmittedAt),
				zap.Int("retries", entry.RetryCount))

			if err := o.journal.RemovePendingRegistration(ctx, entry.LandId); err != nil {
				o.logger.Error("Failed to clear abandoned journal entry", zap.Error(err),
					zap.Stringer("land_id", entry.LandId))
			}

			continue
		}

		if err := o.journal.IncrementRetryCount(ctx, entry.LandId); err != nil {
			o.logger.Error("Failed to increment journal retry count", zap.Error(err),
				zap.Stringer("land_id", entry.LandId))
		}
	}

	return nil
}

func (o *Orchestrator) completeVerification(ctx context.Context, id land.LandID, txHash land.TxHash, adminComments string) (land.Parcel, error) {
	parcel, err := o.repository.Lands().MarkVerified(ctx, id, txHash, adminComments, time.Now().UTC())
	if err != nil {
		return land.Parcel{}, err
	}

	if err := o.journal.RemovePendingRegistration(ctx, id); err != nil {
		o.logger.Error("Failed to clear registration journal entry", zap.Error(err), zap.Stringer("land_id", id))
	}

	return parcel, nil
}

// recoverTxHash digs the registration transaction hash out of the event log
// for parcels that reached the chain without the confirmation being observed.
// Best effort: a record verified with an empty hash is still verified.
func (o *Orchestrator) recoverTxHash(ctx context.Context, id land.LandID) land.TxHash {
	events, err := o.ledger.History(ctx, id)
	if err != nil {
		o.logger.Warn("Failed to recover registration transaction hash", zap.Error(err),
			zap.Stringer("land_id", id))
		return nil
	}

	for _, event := range events {
		if event.Type == ledger.EventRegistered {
			return event.TxHash
		}
	}

	return nil
}
