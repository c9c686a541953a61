// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/remotehack/livemap/geocode"
	"github.com/remotehack/livemap/livemap"
	"github.com/remotehack/livemap/spatial"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "livemap",
	Short: "where the Remote Hack participants are hacking from",
	Long: `
livemap publishes the approximate location of hackathon participants on a
shared map. Locations are rounded to about a kilometre and expire after a
fixed time. Participants add themselves over the HTTP API or with the
/livemap Discord command.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loadEnv()

		return storeOptions.Validate()
	},
}

var Version = "dev"

var (
	storeOptions   = &livemap.Options{}
	geocodeOptions = &geocode.Options{}
	discordOptions = &discordSettings{}
	httpTrace      bool
)

// discordSettings come from the environment so secrets stay out of the
// process listing and the help output.
type discordSettings struct {
	ApplicationID string
	Token         string
	PublicKey     string
}

func loadEnv() {
	if discordOptions.ApplicationID == "" {
		discordOptions.ApplicationID = os.Getenv("DISCORD_APPLICATION_ID")
	}

	discordOptions.Token = os.Getenv("DISCORD_TOKEN")
	discordOptions.PublicKey = os.Getenv("DISCORD_PUBLIC_KEY")
	geocodeOptions.GoogleAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	if geocodeOptions.UserAgent == "" {
		geocodeOptions.UserAgent = fmt.Sprintf("livemap/%s (+https://github.com/remotehack/livemap)", Version)
	}

	if httpTrace {
		geocodeOptions.Trace = os.Stderr
	}
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&storeOptions.DbPath, "db-path", "db", "Directory holding the DuckDB database")
	flags.StringVar(&storeOptions.Backend, "backend", livemap.BackendDuckDB, "Location store: duckdb, dynamodb or memory")
	flags.StringVar(&storeOptions.DynamoTable, "dynamodb-table", os.Getenv("LIVEMAP_DYNAMODB_TABLE"), "DynamoDB table for the dynamodb backend")
	flags.IntVar(&storeOptions.ListLimit, "list-limit", livemap.DefaultListLimit, "Maximum number of locations returned by a listing")
	flags.DurationVar(&storeOptions.TTL, "ttl", livemap.DefaultTTL, "How long a location stays on the map")
	flags.IntVar(&storeOptions.Precision, "precision", spatial.DefaultPrecision, "Decimals kept on published coordinates")
	flags.DurationVar(&storeOptions.StoreTimeout, "store-timeout", livemap.DefaultStoreTimeout, "Timeout of a single store call")

	flags.StringVar(&geocodeOptions.Provider, "geocoder", geocode.ProviderNominatim, "Geocoding provider: nominatim or google")
	flags.StringVar(&geocodeOptions.NominatimURL, "nominatim-url", geocode.NominatimBaseURL, "Nominatim instance")
	flags.StringVar(&geocodeOptions.GoogleProject, "google-project", "", "Project holding the Maps API key when GOOGLE_MAPS_API_KEY is unset")
	flags.StringVar(&geocodeOptions.UserAgent, "user-agent", "", "User-Agent sent to the geocoding provider")
	flags.DurationVar(&storeOptions.GeocodeTimeout, "geocode-timeout", livemap.DefaultGeocodeTimeout, "Timeout of a single geocoding call")
	flags.BoolVar(&httpTrace, "http-trace", false, "Dump geocoding requests and responses to stderr")

	flags.StringVar(&discordOptions.ApplicationID, "discord-application-id", "", "Discord application id (default $DISCORD_APPLICATION_ID)")
}
