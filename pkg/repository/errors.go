package repository

import "github.com/pkg/errors"

var (
	ErrDuplicateLandId = errors.New("a parcel with this land id already exists")
	ErrLandNotFound    = errors.New("land record not found")

	ErrAlreadyRequested       = errors.New("buyer already has an active purchase request for this parcel")
	ErrRequestNotFound        = errors.New("no matching pending purchase request")
	ErrRequestAlreadyAccepted = errors.New("another purchase request has already been accepted for this parcel")

	// ErrStateConflict is returned when a conditional update finds the parcel
	// in a lifecycle state that does not permit the transition, e.g. verifying
	// a parcel that is no longer pending.
	ErrStateConflict = errors.New("parcel is not in a state that permits this operation")

	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("a user with this email or wallet address already exists")
)
