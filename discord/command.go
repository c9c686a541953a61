// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/remotehack/livemap/utils/textutils"
)

// CommandName is the slash command registered by the application.
const CommandName = "livemap"

// Subcommand and option names.
const (
	SubcommandAdd   = "add"
	SubcommandList  = "list"
	SubcommandAbout = "about"

	OptionLocation  = "location"
	OptionAnonymous = "anonymous"
	OptionUseFirst  = "use-first"
)

var (
	// ErrUnknownCommand is returned for a command or subcommand the
	// application does not serve.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMalformedCommand is returned when the options do not have the
	// expected shape.
	ErrMalformedCommand = errors.New("malformed command")
)

// Command is one of AddCommand, ListCommand or AboutCommand.
type Command interface {
	command()
}

// AddCommand publishes the invoking user's location.
type AddCommand struct {
	Location  string
	Anonymous bool
	UseFirst  bool
}

// ListCommand lists who is hacking right now.
type ListCommand struct{}

// AboutCommand describes the map and links the API documentation.
type AboutCommand struct{}

func (AddCommand) command()   {}
func (ListCommand) command()  {}
func (AboutCommand) command() {}

// ParseCommand turns command data into a Command. Names are matched after
// lowercasing and removing accents. Unrecognized options are rejected.
func ParseCommand(data *CommandData) (Command, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no command data", ErrMalformedCommand)
	}

	if textutils.LowerASCIIFolding(data.Name) != CommandName {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, data.Name)
	}

	// Clients holding the first schema send the add options at the top level.
	if len(data.Options) == 0 || data.Options[0].Type != OptionSubCommand {
		return parseAdd(data.Options)
	}

	if len(data.Options) != 1 {
		return nil, fmt.Errorf("%w: expected one subcommand, got %d", ErrMalformedCommand, len(data.Options))
	}

	sub := data.Options[0]

	switch textutils.LowerASCIIFolding(sub.Name) {
	case SubcommandAdd:
		return parseAdd(sub.Options)
	case SubcommandList:
		return ListCommand{}, expectNoOptions(sub)
	case SubcommandAbout:
		return AboutCommand{}, expectNoOptions(sub)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, sub.Name)
	}
}

func expectNoOptions(sub CommandOption) error {
	if len(sub.Options) > 0 {
		return fmt.Errorf("%w: %s takes no options", ErrMalformedCommand, sub.Name)
	}

	return nil
}

func parseAdd(options []CommandOption) (Command, error) {
	var cmd AddCommand

	for _, opt := range options {
		var err error

		switch textutils.LowerASCIIFolding(opt.Name) {
		case OptionLocation:
			err = decodeOption(opt, OptionString, &cmd.Location)
			cmd.Location = strings.TrimSpace(cmd.Location)
		case OptionAnonymous:
			err = decodeOption(opt, OptionBoolean, &cmd.Anonymous)
		case OptionUseFirst:
			err = decodeOption(opt, OptionBoolean, &cmd.UseFirst)
		default:
			err = fmt.Errorf("%w: unexpected option %q", ErrMalformedCommand, opt.Name)
		}

		if err != nil {
			return nil, err
		}
	}

	return cmd, nil
}

func decodeOption(opt CommandOption, wantType int, out any) error {
	if opt.Type != wantType {
		return fmt.Errorf("%w: option %s has type %d, want %d", ErrMalformedCommand, opt.Name, opt.Type, wantType)
	}

	if err := json.Unmarshal(opt.Value, out); err != nil {
		return fmt.Errorf("%w: option %s: %w", ErrMalformedCommand, opt.Name, err)
	}

	return nil
}
