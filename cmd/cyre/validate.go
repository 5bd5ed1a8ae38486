package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cyre.run/cyre/internal/channel"
	"cyre.run/cyre/internal/channelconfig"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a channel definitions file without starting an engine",
	Long: `validate decodes a channel definitions file and checks every entry
against the same rules action() enforces at registration time: non-empty id,
non-negative throttle/debounce/maxWait/delay/interval, a valid repeat count,
throttle and debounce mutually exclusive, and a recognized priority.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	validateCmd.MarkFlagRequired("channels")
}

func runValidate() error {
	specs, err := channelconfig.LoadFile(channelConfigFile)
	if err != nil {
		return err
	}

	invalid := 0
	for _, s := range specs {
		cfg := s.ToConfig()
		if err := channel.Validate(cfg); err != nil {
			fmt.Printf("INVALID: %s\n", err)
			invalid++
			continue
		}
		fmt.Printf("VALID: %q\n", cfg.ID)
	}

	log.Infof("%d channel(s): %d valid, %d invalid", len(specs), len(specs)-invalid, invalid)
	if invalid > 0 {
		return fmt.Errorf("%d channel(s) failed validation", invalid)
	}
	return nil
}
