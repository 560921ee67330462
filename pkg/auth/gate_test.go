package auth

import (
	"context"
	"testing"

	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/pkg/repository/inmemory"
	"github.com/smartlands/landregistry/pkg/types/identity"
	"github.com/stretchr/testify/require"
)

const (
	adminWallet = "0xAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaa"
	userWallet  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func newTestGate(t *testing.T) (*Gate, *inmemory.Repository) {
	t.Helper()

	repo := inmemory.NewRepository()

	var cfg config.Config
	cfg.Admin.WalletAddress = adminWallet

	return NewGate(cfg, repo.Users()), repo
}

func TestResolveRoleConfiguredAdmin(t *testing.T) {
	gate, _ := newTestGate(t)

	// Hex casing must not matter.
	role, err := gate.ResolveRole(context.Background(), "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)
	require.Equal(t, identity.RoleAdmin, role)
}

func TestResolveRoleStoreAdmin(t *testing.T) {
	gate, repo := newTestGate(t)

	_, err := repo.Users().Create(context.Background(), identity.User{
		Name:          "Registrar",
		Email:         "registrar@example.com",
		WalletAddress: userWallet,
		Role:          identity.RoleAdmin,
	})
	require.NoError(t, err)

	role, err := gate.ResolveRole(context.Background(), userWallet)
	require.NoError(t, err)
	require.Equal(t, identity.RoleAdmin, role)
}

func TestResolveRoleStoreUser(t *testing.T) {
	gate, repo := newTestGate(t)

	_, err := repo.Users().Create(context.Background(), identity.User{
		Name:          "Citizen",
		Email:         "citizen@example.com",
		WalletAddress: userWallet,
	})
	require.NoError(t, err)

	role, err := gate.ResolveRole(context.Background(), userWallet)
	require.NoError(t, err)
	require.Equal(t, identity.RoleUser, role)

	isAdmin, err := gate.IsAdmin(context.Background(), userWallet)
	require.NoError(t, err)
	require.False(t, isAdmin)
}

func TestResolveRoleUnknownWalletFailsClosed(t *testing.T) {
	gate, _ := newTestGate(t)

	_, err := gate.ResolveRole(context.Background(), "0xcccccccccccccccccccccccccccccccccccccccc")
	require.ErrorIs(t, err, ErrUnknownWallet)
}

func TestResolveRoleMalformedAddress(t *testing.T) {
	gate, _ := newTestGate(t)

	_, err := gate.ResolveRole(context.Background(), "not-a-wallet")
	require.ErrorIs(t, err, ErrUnknownWallet)
}
