// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var discordCmd = &cobra.Command{
	Use:   "discord",
	Short: "Manage the /livemap Discord command",
}

var discordRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Publish the /livemap command schema (needs DISCORD_APPLICATION_ID and DISCORD_TOKEN)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := newRegistrar()
		if err != nil {
			return err
		}

		return r.Register(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(discordCmd)
	discordCmd.AddCommand(discordRegisterCmd)
}
