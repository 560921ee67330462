package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/pkg/repository/inmemory"
	"github.com/smartlands/landregistry/pkg/state"
	"github.com/smartlands/landregistry/pkg/types/land"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAgentRunsStartupScanAndShutsDown(t *testing.T) {
	cfg := config.Config{}
	cfg.Reconcile.RunAtStartup = true
	cfg.Reconcile.ScanInterval = mustDuration(t, "1h")
	cfg.Reconcile.ScanTimeout = mustDuration(t, "5s")
	cfg.Reconcile.AbandonAfter = mustDuration(t, "24h")

	repo := inmemory.NewRepository()
	fake := newFakeLedger()
	journal := newMemoryJournal()

	parcel := newTestParcel(t, land.StatusPending)
	require.NoError(t, repo.Lands().Create(context.Background(), parcel))
	fake.register(parcel.LandId, testTxHash(0x55))
	require.NoError(t, journal.PutPendingRegistration(context.Background(),
		state.NewPendingRegistration(parcel.LandId, time.Now())))

	orch := New(cfg, zap.NewNop(), repo, fake, journal)
	agent := NewAgent(cfg, zap.NewNop(), orch)

	shutdownCh := make(chan chan error)
	done := make(chan struct{})
	go func() {
		agent.StartLoop(shutdownCh)
		close(done)
	}()

	errCh := make(chan error)
	shutdownCh <- errCh
	require.NoError(t, <-errCh)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not stop after shutdown signal")
	}

	// The startup scan ran before the loop started waiting, so the confirmed
	// registration is already reconciled.
	stored, _, err := repo.Lands().GetByLandId(context.Background(), parcel.LandId)
	require.NoError(t, err)
	require.Equal(t, land.StatusVerified, stored.Status)
}
