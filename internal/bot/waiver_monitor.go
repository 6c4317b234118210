package bot

import (
	"context"
	"time"
)

const sheetLoadTimeout = time.Minute

// startWaiverMonitor starts the background waiver sweep
func (b *Bot) startWaiverMonitor() {
	b.wg.Add(1)
	go b.waiverMonitorLoop()
}

// waiverMonitorLoop runs in the background and moves expired waivers along
func (b *Bot) waiverMonitorLoop() {
	defer b.wg.Done()
	b.logger.Info("Starting waiver monitor")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-b.stopChan
		cancel()
	}()

	// Initial check on startup
	b.checkExpiredWaivers(ctx)

	ticker := time.NewTicker(b.config.WaiverCheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.checkExpiredWaivers(ctx)
		case <-b.stopChan:
			b.logger.Info("Stopping waiver monitor")
			return
		}
	}
}

func (b *Bot) checkExpiredWaivers(ctx context.Context) {
	b.logger.Debug("Checking for expired waivers")
	b.handlers.ProcessDueWaivers(ctx)
}
