// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIBaseURL is the platform REST API.
const DefaultAPIBaseURL = "https://discord.com/api/v10"

// ErrNotConfigured is returned when the application id or bot token is missing.
var ErrNotConfigured = errors.New("discord application id and bot token are required")

// ApplicationCommand is a command definition as published to the platform.
type ApplicationCommand struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Type        int                  `json:"type,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	Options     []ApplicationCommand `json:"options,omitempty"`
}

// Commands returns the schema of the /livemap command.
func Commands() []ApplicationCommand {
	return []ApplicationCommand{
		{
			Name:        CommandName,
			Description: "Share where you are hacking from on the live map",
			Type:        1, // chat input
			Options: []ApplicationCommand{
				{
					Name:        SubcommandAdd,
					Description: "Add your location to the live map",
					Type:        OptionSubCommand,
					Options: []ApplicationCommand{
						{
							Name:        OptionLocation,
							Description: "What city (and/or country) are you hacking from?",
							Type:        OptionString,
							Required:    true,
						},
						{
							Name:        OptionAnonymous,
							Description: "Enabling this does not show your username with your location",
							Type:        OptionBoolean,
						},
						{
							Name:        OptionUseFirst,
							Description: "Use the first match when the location is ambiguous",
							Type:        OptionBoolean,
						},
					},
				},
				{
					Name:        SubcommandList,
					Description: "See who is hacking right now",
					Type:        OptionSubCommand,
				},
				{
					Name:        SubcommandAbout,
					Description: "About the live map",
					Type:        OptionSubCommand,
				},
			},
		},
	}
}

// Registrar publishes the command schema. Publishing overwrites the global
// commands, so repeating it is harmless.
type Registrar struct {
	baseURL    string
	appID      string
	token      string
	httpClient *http.Client
}

// RegistrarOption configures the Registrar.
type RegistrarOption func(*Registrar)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) RegistrarOption {
	return func(r *Registrar) {
		r.httpClient = c
	}
}

// WithBaseURL sets a custom API base URL.
func WithBaseURL(url string) RegistrarOption {
	return func(r *Registrar) {
		r.baseURL = strings.TrimRight(url, "/")
	}
}

// NewRegistrar creates a registrar for the application.
func NewRegistrar(appID, token string, opts ...RegistrarOption) (*Registrar, error) {
	if appID == "" || token == "" {
		return nil, ErrNotConfigured
	}

	r := &Registrar{
		baseURL:    DefaultAPIBaseURL,
		appID:      appID,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// RegistrationError is a rejected registration.
type RegistrationError struct {
	StatusCode int
	Body       string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registering commands: HTTP %d: %s", e.StatusCode, e.Body)
}

// Register overwrites the application's global commands with Commands().
func (r *Registrar) Register(ctx context.Context) error {
	body, err := json.Marshal(Commands())
	if err != nil {
		return fmt.Errorf("encoding commands: %w", err)
	}

	url := fmt.Sprintf("%s/applications/%s/commands", r.baseURL, r.appID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bot "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return &RegistrationError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	log.Printf("✅ Registered /%s for application %s", CommandName, r.appID)

	return nil
}
