// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/remotehack/livemap/api"
	"github.com/remotehack/livemap/discord"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live map HTTP API and the Discord interactions endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := wire(ctx, true)
		if err != nil {
			return err
		}
		defer c.Close()

		interactions, err := discord.NewHandler(discord.Config{
			PublicKey:     discordOptions.PublicKey,
			SearchTimeout: storeOptions.GeocodeTimeout,
		}, c.geocoder, c.ingester, c.query)
		if err != nil {
			return err
		}

		var registrar api.Registrar
		if r, err := newRegistrar(); err != nil {
			log.Printf("⚠️  Discord command registration disabled: %v", err)
		} else {
			registrar = r
		}

		go c.sweep(ctx, time.Hour)

		return api.NewServer(c.ingester, c.query, interactions, registrar).Run(ctx, serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8787", "Address to listen on")
}
