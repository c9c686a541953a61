// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/remotehack/livemap/livemap"
	"github.com/remotehack/livemap/utils/textutils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Read and write the location store directly",
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the live locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := wire(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer c.Close()

		listing, err := c.query.ListLive(cmd.Context())
		if err != nil {
			return err
		}

		printLocations(cmd.OutOrStdout(), listing.Locations)

		switch {
		case listing.Skipped > 0:
			log.Printf("⚠️  %s unreadable locations were skipped", textutils.FormatInt(int64(listing.Skipped)))
		case listing.Truncated:
			log.Printf("⚠️  Only the first %s locations are shown", textutils.FormatInt(int64(len(listing.Locations))))
		}

		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func printLocations(w io.Writer, locations []livemap.LiveLocation) {
	a, b, c, d := strings.Repeat("─", 20), strings.Repeat("─", 40), strings.Repeat("─", 17), strings.Repeat("─", 16)
	fmt.Fprintf(w, "╭─%-20s─┬─%-40s─┬─%-17s─┬─%-16s─╮\n", a, b, c, d)
	fmt.Fprintf(w, "│ %-20s │ %-40s │ %-17s │ %-16s │\n", "Name", "Place", "Coordinates", "Expires")
	fmt.Fprintf(w, "├─%-20s─┼─%-40s─┼─%-17s─┼─%-16s─┤\n", a, b, c, d)

	for _, loc := range locations {
		name := loc.Name
		if name == "" {
			name = "Anonymous"
		}

		expires := ""
		if loc.ExpiresAt != nil {
			expires = loc.ExpiresAt.Local().Format("2006-01-02 15:04")
		}

		fmt.Fprintf(w, "│ %-20s │ %-40s │ %-17s │ %-16s │\n",
			truncate(name, 20), truncate(loc.LocationName, 40), loc.Point().String(), expires)
	}

	fmt.Fprintf(w, "╰─%-20s─┴─%-40s─┴─%-17s─┴─%-16s─╯\n", a, b, c, d)
	fmt.Fprintf(w, "%s hacking right now\n", textutils.Pluralise(int64(len(locations)), "person", "people"))
}

var (
	addName string
	addLat  float64
	addLon  float64
)

var locationsAddCmd = &cobra.Command{
	Use:   "add --lat <latitude> --lon <longitude>",
	Short: "Add a location, rounded and named like any other submission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := wire(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer c.Close()

		created, err := c.ingester.Submit(cmd.Context(), livemap.NewSubmission(addName, addLat, addLon))
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(created)
	},
}

var exportFormat string

var locationsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the live locations to stdout as JSON or GeoJSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := wire(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer c.Close()

		listing, err := c.query.ListLive(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		switch exportFormat {
		case "json":
			return enc.Encode(listing.Locations)
		case "geojson":
			return enc.Encode(livemap.NewFeatureCollection(listing.Locations))
		default:
			return fmt.Errorf("unknown format %q, expected json or geojson", exportFormat)
		}
	},
}

var importSkipGeocode bool

var locationsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Submit every location of a JSON array of {name?, latitude, longitude}",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		var subs []livemap.Submission
		if err := json.Unmarshal(data, &subs); err != nil {
			return fmt.Errorf("decoding %s: %w", args[0], err)
		}

		c, err := wire(cmd.Context(), !importSkipGeocode)
		if err != nil {
			return err
		}
		defer c.Close()

		return importSubmissions(cmd, c.ingester, subs)
	},
}

func importSubmissions(cmd *cobra.Command, ingester *livemap.Ingester, subs []livemap.Submission) error {
	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(subs),
			progressbar.OptionSetDescription("Importing locations"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	start := time.Now()

	var stored, rejected int64

	for i, sub := range subs {
		if _, err := ingester.Submit(cmd.Context(), sub); err != nil {
			var verr *livemap.ValidationError
			if !errors.As(err, &verr) {
				return fmt.Errorf("importing entry %d: %w", i, err)
			}

			log.Printf("⚠️  Skipping entry %d: %v", i, err)

			rejected++
		} else {
			stored++
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				return fmt.Errorf("updating progress bar: %w", err)
			}
		}
	}

	log.Printf("Imported %s locations, %s rejected, in %v",
		textutils.FormatInt(stored), textutils.FormatInt(rejected), time.Since(start).Round(time.Millisecond))

	return nil
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsAddCmd)
	locationsCmd.AddCommand(locationsExportCmd)
	locationsCmd.AddCommand(locationsImportCmd)

	locationsAddCmd.Flags().StringVar(&addName, "name", "", "Name shown with the location, anonymous when empty")
	locationsAddCmd.Flags().Float64Var(&addLat, "lat", 0, "Latitude in degrees")
	locationsAddCmd.Flags().Float64Var(&addLon, "lon", 0, "Longitude in degrees")
	_ = locationsAddCmd.MarkFlagRequired("lat")
	_ = locationsAddCmd.MarkFlagRequired("lon")
	locationsExportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json or geojson")
	locationsImportCmd.Flags().BoolVar(&importSkipGeocode, "skip-geocode", false, "Store the locations without looking up place names")
}
