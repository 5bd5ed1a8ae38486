package main

import (
	"errors"

	"github.com/spf13/cobra"

	"cyre.run/cyre"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the last snapshot saved by a serve --snapshot run",
	Long: `status reads a snapshot file written by a previous serve --snapshot run
and prints its channel count, payload slot count, and global metrics
counters as of the snapshot's timestamp.

cyre has no running-daemon control plane; status
inspects the last persisted state on disk rather than querying a live
process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus()
	},
}

func init() {
	statusCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot file to read (required)")
	statusCmd.MarkFlagRequired("snapshot")
}

func runStatus() error {
	store, err := cyre.NewFileSnapshotStore(snapshotPath)
	if err != nil {
		return err
	}

	snap, err := store.Load()
	if err != nil {
		if errors.Is(err, cyre.ErrNoSnapshot) {
			log.Warn("no snapshot saved yet")
			return nil
		}
		return err
	}

	log.WithFields(map[string]any{
		"ts_ms":    snap.TsMs,
		"channels": len(snap.Channels),
		"payloads": len(snap.Payloads),
		"calls":    snap.Metrics.TotalCalls,
		"execs":    snap.Metrics.TotalExecs,
		"errors":   snap.Metrics.TotalErrors,
	}).Info("snapshot")

	for _, ch := range snap.Channels {
		log.Infof("  channel %q: priority=%s throttle_ms=%d debounce_ms=%d", ch.ID, ch.Priority, ch.ThrottleMs, ch.DebounceMs)
	}
	return nil
}
