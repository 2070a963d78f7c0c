package app

import (
	"context"
	"time"
)

// StartScheduler launches the background jobs: periodic portfolio snapshots
// and price alert checks. Both run until Close cancels them.
func (a *App) StartScheduler() {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	go a.runSnapshotJob(ctx)
	go a.runAlertJob(ctx)
}

func (a *App) runSnapshotJob(ctx context.Context) {
	interval := a.Config.Jobs.GetSnapshotInterval()
	a.Logger.Info().Dur("interval", interval).Msg("Snapshot job started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Logger.Debug().Msg("Snapshot job stopped")
			return
		case <-ticker.C:
			if err := a.PortfolioService.SnapshotAll(ctx); err != nil {
				a.Logger.Warn().Err(err).Msg("Snapshot sweep failed")
			}
		}
	}
}

func (a *App) runAlertJob(ctx context.Context) {
	interval := a.Config.Jobs.GetAlertInterval()
	a.Logger.Info().Dur("interval", interval).Msg("Alert checker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Logger.Debug().Msg("Alert checker stopped")
			return
		case <-ticker.C:
			if err := a.AlertService.CheckAll(ctx); err != nil {
				a.Logger.Warn().Err(err).Msg("Alert check failed")
			}
		}
	}
}
