// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

// Package api serves the live map over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remotehack/livemap/discord"
	"github.com/remotehack/livemap/livemap"
)

// TruncatedHeader is set on listings cut short by the store.
const TruncatedHeader = "X-Livemap-Truncated"

// DefaultCellResolution is used when the cells endpoint gets no res parameter.
const DefaultCellResolution = 5

const maxBodyBytes = 64 << 10

// Submitter stores submitted locations.
type Submitter interface {
	Submit(ctx context.Context, sub livemap.Submission) (*livemap.Created, error)
}

// Querier reads live locations.
type Querier interface {
	ListLive(ctx context.Context) (*livemap.Listing, error)
	CellCounts(ctx context.Context, res int) ([]livemap.CellCount, bool, error)
}

// InteractionHandler answers chat interactions.
type InteractionHandler interface {
	Handle(ctx context.Context, in discord.Inbound) discord.Outcome
}

// Registrar publishes the chat command schema.
type Registrar interface {
	Register(ctx context.Context) error
}

// Server wires the HTTP routes to the live map components.
type Server struct {
	ingester     Submitter
	query        Querier
	interactions InteractionHandler
	registrar    Registrar
}

// NewServer creates a server. registrar may be nil when the bot credentials
// are not configured.
func NewServer(ingester Submitter, query Querier, interactions InteractionHandler, registrar Registrar) *Server {
	return &Server{
		ingester:     ingester,
		query:        query,
		interactions: interactions,
		registrar:    registrar,
	}
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors())

	r.GET("/openapi", s.openAPI)
	r.GET("/docs", s.docs)

	r.GET("/api/locations", s.listLocations)
	r.POST("/api/locations", s.addLocation)
	r.GET("/api/locations/cells", s.cellCounts)
	r.GET("/locations.geojson", s.geoJSON)

	r.POST("/api/discord", s.discordInteraction)
	r.POST("/api/discord/register", s.discordRegister)

	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("🌍 Serving live map on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

// cors allows any origin and answers preflight requests directly.
func cors() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		h := ctx.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,POST,DELETE,PATCH")
		h.Set("Access-Control-Expose-Headers", TruncatedHeader)

		if ctx.Request.Method == http.MethodOptions {
			if req := ctx.GetHeader("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
				h.Add("Vary", "Access-Control-Request-Headers")
			}

			ctx.AbortWithStatus(http.StatusNoContent)

			return
		}

		ctx.Next()
	}
}

// writeError maps component errors to responses without leaking internals.
func writeError(ctx *gin.Context, err error) {
	var verr *livemap.ValidationError

	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, livemap.ErrStoreUnavailable):
		log.Printf("❌ %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "location store unavailable"})
	default:
		log.Printf("❌ %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) listLocations(ctx *gin.Context) {
	listing, err := s.query.ListLive(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)

		return
	}

	if listing.Truncated {
		ctx.Header(TruncatedHeader, "true")
	}

	ctx.JSON(http.StatusOK, listing.Locations)
}

func (s *Server) addLocation(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes)

	var sub livemap.Submission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})

		return
	}

	created, err := s.ingester.Submit(ctx.Request.Context(), sub)
	if err != nil {
		writeError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, created)
}

func (s *Server) geoJSON(ctx *gin.Context) {
	listing, err := s.query.ListLive(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)

		return
	}

	if listing.Truncated {
		ctx.Header(TruncatedHeader, "true")
	}

	ctx.JSON(http.StatusOK, livemap.NewFeatureCollection(listing.Locations))
}

func (s *Server) cellCounts(ctx *gin.Context) {
	res := DefaultCellResolution

	if raw := ctx.Query("res"); raw != "" {
		var err error

		res, err = strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "res must be an integer", "field": "res"})

			return
		}
	}

	counts, truncated, err := s.query.CellCounts(ctx.Request.Context(), res)
	if err != nil {
		if !errors.Is(err, livemap.ErrStoreUnavailable) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "res"})

			return
		}

		writeError(ctx, err)

		return
	}

	if truncated {
		ctx.Header(TruncatedHeader, "true")
	}

	ctx.JSON(http.StatusOK, counts)
}

func (s *Server) discordInteraction(ctx *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodyBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})

		return
	}

	out := s.interactions.Handle(ctx.Request.Context(), discord.Inbound{
		Signature: ctx.GetHeader("X-Signature-Ed25519"),
		Timestamp: ctx.GetHeader("X-Signature-Timestamp"),
		Host:      ctx.Request.Host,
		Body:      body,
	})

	ctx.Data(out.Status, "application/json", out.Body)
}

func (s *Server) discordRegister(ctx *gin.Context) {
	if s.registrar == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": discord.ErrNotConfigured.Error()})

		return
	}

	if err := s.registrar.Register(ctx.Request.Context()); err != nil {
		log.Printf("❌ Registering commands: %v", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "failed to register commands"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
