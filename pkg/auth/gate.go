// Package auth resolves wallet addresses to roles. There are no sessions or
// tokens; callers prove nothing beyond presenting an address, and the ledger
// transactions they submit are signed by the wallet itself. The gate exists
// to keep administrative REST operations behind the designated admin account.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/pkg/repository"
	"github.com/smartlands/landregistry/pkg/types/identity"
	"github.com/smartlands/landregistry/pkg/types/land"
)

var ErrUnknownWallet = errors.New("wallet address is not registered")

type Gate struct {
	config config.Config
	users  repository.UserRepository
}

func NewGate(config config.Config, users repository.UserRepository) *Gate {
	return &Gate{
		config: config,
		users:  users,
	}
}

// ResolveRole maps a wallet address to a role. The statically configured
// admin wallet wins over anything in the user store; otherwise the store's
// role field decides. Unknown wallets fail closed with ErrUnknownWallet.
func (g *Gate) ResolveRole(ctx context.Context, walletAddress string) (identity.Role, error) {
	if !land.ValidWalletAddress(walletAddress) {
		return "", errors.Wrap(ErrUnknownWallet, "malformed wallet address")
	}

	if g.config.Admin.WalletAddress != "" && land.SameWallet(walletAddress, g.config.Admin.WalletAddress) {
		return identity.RoleAdmin, nil
	}

	user, found, err := g.users.GetByWallet(ctx, walletAddress)
	if err != nil {
		return "", err
	}

	if !found {
		return "", ErrUnknownWallet
	}

	return user.Role, nil
}

// IsAdmin reports whether the wallet resolves to the admin role.
func (g *Gate) IsAdmin(ctx context.Context, walletAddress string) (bool, error) {
	role, err := g.ResolveRole(ctx, walletAddress)
	if err != nil {
		return false, err
	}

	return role == identity.RoleAdmin, nil
}
