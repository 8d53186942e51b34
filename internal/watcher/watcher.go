// Package watcher follows bonding-curve program logs and finalizes drafted
// campaigns: a drafted campaign whose token mint shows up in a successful
// pool-creation transaction becomes SUCCESS, a failed one becomes FAILED.
package watcher

import (
	"context"
	"log"
	"strings"

	"curvefund/internal/domain"
	"curvefund/internal/ledger"
	"curvefund/internal/observability"
	"curvefund/internal/solana"
	"curvefund/internal/storage"
)

// creationMarkers identify pool-creation transactions in program logs.
var creationMarkers = []string{
	"Instruction: InitializeVirtualPoolWithSplToken",
	"Instruction: InitializeVirtualPoolWithToken2022",
}

// Watcher drives campaign status transitions from on-chain pool creation.
type Watcher struct {
	ws        solana.WSClient
	campaigns storage.CampaignStore
	logger    *log.Logger
}

// New creates a watcher over the given subscription client and store.
func New(ws solana.WSClient, campaigns storage.CampaignStore, logger *log.Logger) *Watcher {
	return &Watcher{ws: ws, campaigns: campaigns, logger: logger}
}

// Run subscribes to logs mentioning the bonding-curve program and processes
// notifications until the context is cancelled or the channel closes.
func (w *Watcher) Run(ctx context.Context) error {
	ch, err := w.ws.SubscribeLogs(ctx, solana.LogsFilter{
		Mentions: []string{ledger.DBCProgramID},
	})
	if err != nil {
		return err
	}

	w.logger.Printf("watcher: subscribed to %s logs", ledger.DBCProgramID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			w.handle(ctx, n)
		}
	}
}

// handle matches one notification against drafted campaigns.
func (w *Watcher) handle(ctx context.Context, n solana.LogNotification) {
	if !isPoolCreation(n.Logs) {
		return
	}

	drafted, err := w.campaigns.ListActive(ctx, storage.CampaignFilter{Status: domain.StatusDrafted})
	if err != nil {
		w.logger.Printf("watcher: list drafted campaigns: %v", err)
		return
	}

	for _, c := range drafted {
		if c.TokenMint == "" || !mentionsMint(n.Logs, c.TokenMint) {
			continue
		}

		status := domain.StatusSuccess
		if n.Err != nil {
			status = domain.StatusFailed
		}

		if _, err := w.campaigns.Update(ctx, c.ID, domain.CampaignPatch{Status: &status}); err != nil {
			w.logger.Printf("watcher: update campaign %s: %v", c.ID, err)
			continue
		}

		observability.RecordStatusTransition(string(status))
		w.logger.Printf("watcher: campaign %s -> %s (mint %s, sig %s)", c.ID, status, c.TokenMint, n.Signature)
	}
}

func isPoolCreation(logs []string) bool {
	for _, line := range logs {
		for _, marker := range creationMarkers {
			if strings.Contains(line, marker) {
				return true
			}
		}
	}
	return false
}

func mentionsMint(logs []string, mint string) bool {
	for _, line := range logs {
		if strings.Contains(line, mint) {
			return true
		}
	}
	return false
}
