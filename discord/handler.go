// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/remotehack/livemap/geocode"
	"github.com/remotehack/livemap/livemap"
)

// Searcher resolves free text into candidate places. geocode.Geocoder
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]geocode.Place, error)
}

// Submitter stores a location. *livemap.Ingester satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sub livemap.Submission) (*livemap.Created, error)
}

// Lister reads the live locations and the time they stay on the map.
// *livemap.Query satisfies it.
type Lister interface {
	ListLive(ctx context.Context) (*livemap.Listing, error)
	TTL() time.Duration
}

// Config configures the interaction handler.
type Config struct {
	// PublicKey is the hex encoded application public key. Without it every
	// interaction is rejected.
	PublicKey string

	// SearchTimeout bounds the forward geocoding of an add command.
	SearchTimeout time.Duration
}

// Inbound is a raw interaction request.
type Inbound struct {
	Signature string
	Timestamp string
	Host      string
	Body      []byte
}

// Outcome is the HTTP status and JSON body to answer with.
type Outcome struct {
	Status int
	Body   []byte
}

// Handler answers slash command interactions.
type Handler struct {
	verifier *Verifier
	geocoder Searcher
	ingester Submitter
	query    Lister
	config   Config
}

// NewHandler creates a handler. It fails when the public key is set but
// cannot be parsed.
func NewHandler(config Config, geocoder Searcher, ingester Submitter, query Lister) (*Handler, error) {
	h := &Handler{
		geocoder: geocoder,
		ingester: ingester,
		query:    query,
		config:   config,
	}

	if config.PublicKey == "" {
		log.Println("⚠️  No Discord public key configured, interactions will be rejected")

		return h, nil
	}

	verifier, err := NewVerifier(config.PublicKey)
	if err != nil {
		return nil, err
	}

	h.verifier = verifier

	return h, nil
}

func errorOutcome(status int, message string) Outcome {
	body, _ := json.Marshal(map[string]string{"error": message})

	return Outcome{Status: status, Body: body}
}

// Handle verifies the request before reading it, then answers pings and
// commands. It never returns internal error details.
func (h *Handler) Handle(ctx context.Context, in Inbound) Outcome {
	if err := h.verifier.Verify(in.Signature, in.Timestamp, in.Body); err != nil {
		if errors.Is(err, ErrMissingSignature) {
			return errorOutcome(http.StatusBadRequest, "Invalid request")
		}

		log.Printf("🔒 Rejected interaction: %v", err)

		return errorOutcome(http.StatusUnauthorized, "Bad request signature")
	}

	var interaction Interaction
	if err := json.Unmarshal(in.Body, &interaction); err != nil {
		return errorOutcome(http.StatusBadRequest, "Malformed request")
	}

	switch interaction.Type {
	case InteractionPing:
		return Outcome{Status: http.StatusOK, Body: in.Body}

	case InteractionApplicationCommand:
		cmd, err := ParseCommand(interaction.Data)
		if errors.Is(err, ErrUnknownCommand) {
			log.Printf("⚠️  %v", err)

			return errorOutcome(http.StatusBadRequest, "Unknown command")
		}

		if err != nil {
			log.Printf("⚠️  %v", err)

			return errorOutcome(http.StatusBadRequest, "Unknown type")
		}

		reply, err := h.Dispatch(ctx, cmd, interaction.DisplayName(), in.Host)
		if err != nil {
			log.Printf("❌ Failed to handle %T: %v", cmd, err)

			return errorOutcome(http.StatusBadRequest, "Unknown type")
		}

		body, err := json.Marshal(reply.Response())
		if err != nil {
			return errorOutcome(http.StatusBadRequest, "Unknown type")
		}

		return Outcome{Status: http.StatusOK, Body: body}

	default:
		log.Printf("⚠️  Unknown interaction type %d", interaction.Type)

		return errorOutcome(http.StatusBadRequest, "Unknown type")
	}
}

// Dispatch runs a parsed command for the user named user ("" when unknown)
// and returns the reply. Errors are only returned for failures that have no
// reply of their own.
func (h *Handler) Dispatch(ctx context.Context, cmd Command, user, host string) (Reply, error) {
	switch c := cmd.(type) {
	case AddCommand:
		return h.add(ctx, c, user)
	case ListCommand:
		return h.list(ctx)
	case AboutCommand:
		return Reply{Content: aboutReply(host, h.query.TTL())}, nil
	default:
		return Reply{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func (h *Handler) search(ctx context.Context, query string) ([]geocode.Place, error) {
	if h.config.SearchTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, h.config.SearchTimeout)
		defer cancel()
	}

	return h.geocoder.Search(ctx, query)
}

func (h *Handler) add(ctx context.Context, cmd AddCommand, user string) (Reply, error) {
	private := func(content string) (Reply, error) {
		return Reply{Content: content, Ephemeral: true}, nil
	}

	if cmd.Location == "" {
		return private(replyMissingLocation)
	}

	places, err := h.search(ctx, cmd.Location)

	switch {
	case geocode.IsNotFound(err):
		return private(replyNotFound)
	case geocode.IsRateLimitError(err), geocode.IsQuotaExceededError(err):
		log.Printf("⚠️  Searching %q was throttled: %v", cmd.Location, err)

		return private(replyBusy)
	case err != nil:
		log.Printf("⚠️  Searching %q failed: %v", cmd.Location, err)

		return private(replySearchFailed)
	case len(places) == 0:
		return private(replyNotFound)
	case len(places) > 1 && !cmd.UseFirst:
		return private(ambiguousReply(places))
	}

	name := user
	if cmd.Anonymous {
		name = ""
	}

	created, err := h.ingester.Submit(ctx, livemap.NewSubmission(name, places[0].Latitude, places[0].Longitude))

	var verr *livemap.ValidationError

	switch {
	case errors.As(err, &verr):
		return private(invalidReply(verr))
	case errors.Is(err, livemap.ErrStoreUnavailable):
		log.Printf("❌ Storing location for %q failed: %v", cmd.Location, err)

		return private(replyUnavailable)
	case err != nil:
		return Reply{}, err
	}

	return private(addedReply(time.Duration(created.TTL) * time.Second))
}

func (h *Handler) list(ctx context.Context) (Reply, error) {
	listing, err := h.query.ListLive(ctx)
	if errors.Is(err, livemap.ErrStoreUnavailable) {
		log.Printf("❌ Listing locations failed: %v", err)

		return Reply{Content: replyUnavailable, Ephemeral: true}, nil
	}

	if err != nil {
		return Reply{}, err
	}

	return Reply{Content: listReply(listing.Locations)}, nil
}
