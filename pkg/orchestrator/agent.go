package orchestrator

import (
	"context"
	"time"

	"github.com/smartlands/landregistry/internal/config"
	"go.uber.org/zap"
)

// Agent runs the reconciliation scan on a timer so that registrations whose
// confirmation was missed eventually converge without operator action.
type Agent struct {
	config       config.Config
	logger       *zap.Logger
	orchestrator *Orchestrator
}

func NewAgent(config config.Config, logger *zap.Logger, orchestrator *Orchestrator) *Agent {
	return &Agent{
		config:       config,
		logger:       logger,
		orchestrator: orchestrator,
	}
}

func (a *Agent) StartLoop(shutdownCh chan chan error) {
	ticker := time.NewTicker(a.config.Reconcile.ScanInterval.Duration())
	defer ticker.Stop()

	if a.config.Reconcile.RunAtStartup {
		if err := a.runScan(); err != nil {
			a.logger.Error("Failed to run reconciliation scan at startup", zap.Error(err))
		}
	}

	for {
		select {
		case ch := <-shutdownCh:
			ch <- nil
			return
		case <-ticker.C:
			if err := a.runScan(); err != nil {
				a.logger.Error("Failed to run reconciliation scan", zap.Error(err))
			}
		}
	}
}

func (a *Agent) runScan() error {
	ctx, cancelFunc := context.WithTimeout(context.Background(), a.config.Reconcile.ScanTimeout.Duration())
	defer cancelFunc()

	a.logger.Debug("Scanning pending-registration journal")
	if err := a.orchestrator.Reconcile(ctx); err != nil {
		return err
	}

	a.logger.Debug("Reconciliation scan complete")
	return nil
}
