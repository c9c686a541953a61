// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

// Package discord answers the /livemap slash command: it verifies signed
// interactions, dispatches the add, list and about subcommands and
// publishes the command schema.
package discord

import "encoding/json"

// InteractionType tags an inbound interaction.
type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
)

// ResponseChannelMessage answers an interaction with a message.
const ResponseChannelMessage = 4

// FlagEphemeral makes a reply visible to the invoking user only.
const FlagEphemeral = 1 << 6

// Option types used by the command schema.
const (
	OptionSubCommand = 1
	OptionString     = 3
	OptionBoolean    = 5
)

// Interaction is the part of an inbound interaction the handler reads.
type Interaction struct {
	Type   InteractionType `json:"type"`
	Data   *CommandData    `json:"data,omitempty"`
	Member *Member         `json:"member,omitempty"`
	User   *User           `json:"user,omitempty"`
}

// CommandData names the invoked command and its options.
type CommandData struct {
	Name    string          `json:"name"`
	Options []CommandOption `json:"options,omitempty"`
}

// CommandOption is a subcommand or a value. Value is kept raw until the
// parser knows which type to expect.
type CommandOption struct {
	Name    string          `json:"name"`
	Type    int             `json:"type"`
	Value   json.RawMessage `json:"value,omitempty"`
	Options []CommandOption `json:"options,omitempty"`
}

// Member is the guild member who invoked the command.
type Member struct {
	User *User `json:"user,omitempty"`
}

// User is a platform account.
type User struct {
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
}

// DisplayName returns the name to publish for the invoking user, or "" when
// the payload carries none.
func (i *Interaction) DisplayName() string {
	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}

	if user == nil {
		return ""
	}

	if user.GlobalName != "" {
		return user.GlobalName
	}

	return user.Username
}

// InteractionResponse is the body returned to the platform.
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData is the message of an InteractionResponse.
type ResponseData struct {
	Content string `json:"content"`
	Flags   int    `json:"flags,omitempty"`
}

// Reply is a chat answer and its visibility.
type Reply struct {
	Content   string
	Ephemeral bool
}

// Response renders the reply as an interaction response.
func (r Reply) Response() InteractionResponse {
	data := &ResponseData{Content: r.Content}
	if r.Ephemeral {
		data.Flags = FlagEphemeral
	}

	return InteractionResponse{Type: ResponseChannelMessage, Data: data}
}
