// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/remotehack/livemap/geocode"
	"github.com/remotehack/livemap/livemap"
	"github.com/remotehack/livemap/utils/textutils"
)

// MaxContentLength is the longest message the platform accepts.
const MaxContentLength = 2000

const (
	replyMissingLocation = "Please specify a location!"
	replyNotFound        = "I could not find that location, try something else."
	replySearchFailed    = "I'm having trouble looking up locations at the moment, please try again later."
	replyBusy            = "Too many location lookups right now, please try again shortly."
	replyUnavailable     = "The map is unavailable right now, please try again later."
)

func ambiguousReply(places []geocode.Place) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I found a few results, try again with a more specific location or set `%s` to pick the first one:", OptionUseFirst)

	for _, p := range places {
		b.WriteString("\n- ")
		b.WriteString(p.DisplayName)
	}

	return fitContent(b.String())
}

func addedReply(ttl time.Duration) string {
	return fmt.Sprintf("Your location has been added to the map! It will be removed in %s.", textutils.FormatDuration(ttl))
}

func invalidReply(verr *livemap.ValidationError) string {
	switch verr.Field {
	case "latitude", "longitude":
		return fmt.Sprintf("That location can't be added to the map: the place found is outside the valid %s range. Try somewhere more specific.", verr.Field)
	default:
		return "That location can't be added to the map, try another one."
	}
}

// describeLocation renders "Name from Place", falling back to "Anonymous"
// and to the coordinates.
func describeLocation(loc livemap.LiveLocation) string {
	name := loc.Name
	if name == "" {
		name = "Anonymous"
	}

	place := loc.LocationName
	if place == "" {
		place = loc.Point().String()
	}

	return name + " from " + place
}

func listReply(locations []livemap.LiveLocation) string {
	n := int64(len(locations))
	people := textutils.Pluralise(n, "person", "people")

	switch n {
	case 0:
		return "There are " + people + " hacking right now."
	case 1:
		return "There is " + people + " hacking right now:\n- " + describeLocation(locations[0])
	}

	lines := make([]string, 0, len(locations))
	for _, loc := range locations {
		lines = append(lines, describeLocation(loc))
	}

	header := "There are " + people + " hacking right now:"

	return header + fitLines(lines, MaxContentLength-len(header))
}

// fitLines renders lines as a bulleted list no longer than budget, replacing
// the tail with a count of the omitted lines.
func fitLines(lines []string, budget int) string {
	var b strings.Builder

	for i, line := range lines {
		item := "\n- " + line

		rest := len(lines) - i - 1
		more := ""
		if rest > 0 {
			more = fmt.Sprintf("\n- and %s more", textutils.FormatInt(int64(rest)))
		}

		if b.Len()+len(item)+len(more) > budget {
			fmt.Fprintf(&b, "\n- and %s more", textutils.FormatInt(int64(len(lines)-i)))

			break
		}

		b.WriteString(item)
	}

	return b.String()
}

func fitContent(s string) string {
	if len(s) <= MaxContentLength {
		return s
	}

	const ellipsis = "\n…"

	limit := MaxContentLength - len(ellipsis)

	cut := strings.LastIndex(s[:limit], "\n")
	if cut <= 0 {
		cut = limit
	}

	return strings.ToValidUTF8(s[:cut], "") + ellipsis
}

func aboutReply(host string, ttl time.Duration) string {
	docs := "/docs"
	if host != "" {
		docs = "https://" + host + "/docs"
	}

	return fmt.Sprintf(
		"The Remote Hack live map shows where people are hacking from. "+
			"Locations are rounded to about a kilometre and removed after %s. "+
			"Use `/%s %s` to join in. The HTTP API is documented at %s",
		textutils.FormatDuration(ttl), CommandName, SubcommandAdd, docs)
}
