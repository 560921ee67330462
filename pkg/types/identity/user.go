package identity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an off-chain account. WalletAddress is optional at sign-up (a user
// may register before connecting a wallet) but unique once set.
type User struct {
	Id            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	WalletAddress string             `bson:"wallet_address,omitempty" json:"walletAddress,omitempty"`
	Role          Role               `bson:"role" json:"role"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

// UserUpdate is a partial update; nil fields are left untouched. Role changes
// go through here only for explicit admin escalation.
type UserUpdate struct {
	Name          *string
	Email         *string
	WalletAddress *string
	Role          *Role
}
