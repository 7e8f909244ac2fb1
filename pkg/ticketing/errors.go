package ticketing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotTicketChannel is returned when a channel topic does not carry ticket metadata.
	ErrNotTicketChannel = errors.New("not a ticket channel")

	// ErrUnknownChannel is returned by a Gateway when the channel does not exist.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrUnknownGuild is returned by a Gateway when the bot is not a member of the guild.
	ErrUnknownGuild = errors.New("unknown guild")
)

// ValidationError is returned when a panel definition is rejected.
type ValidationError struct {
	Message string

	// Values are the offending values, e.g. the duplicated option values.
	Values []string
}

func (e *ValidationError) Error() string {
	if len(e.Values) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Values, ", "))
}

// PermissionError is returned when the bot is missing a capability.
type PermissionError struct {
	// Permission is the name of the missing permission.
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("the bot requires the %s permission in the target channel", e.Permission)
}

// NotFoundError is returned when a panel or ticket context cannot be found.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// PlatformError wraps a failed call to the chat platform.
type PlatformError struct {
	// Op is the operation that failed.
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}
