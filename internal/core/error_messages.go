package core

// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Both the command line and the HTTP service report
// failures through MapError.
//
// # Configuration Errors (CFG001-CFG099)
//
// Detected before any row is read. Nothing is written.
//
//	CFG001 - Empty column: No column to explode was named
//	         Action: Pass --column or set EXPLODE_COLUMN
//	CFG002 - Column not found: The column is not in the input header
//	         Action: Check the header of the input file
//	CFG003 - No fields: The list of fields to explode is empty
//	         Action: Pass --fields with at least one field name
//	CFG004 - Unknown field: A requested field name is not recognized
//	         Action: See GET /api/fields or --help for valid names
//	CFG005 - Duplicate field: The same output column was requested twice
//	         Action: Remove the repeated field name
//	CFG006 - Column collision: An exploded column already exists
//	         Action: Use a different --prefix or pass --overwrite
//	CFG007 - Duplicate header: The input header repeats a column name
//	         Action: Rename the duplicate column in the input
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Not a list: List expansion was required but a value was a single item
//	         Action: Drop --expand or fix the reported row
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File not found
//	FILE002 - Row too wide: A row has more cells than the header
//	FILE003 - Bad compression: A .gz file could not be decoded
//	FILE004 - Empty input: The input has no header line
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Cancelled
//	REQ002 - Timed out
//	REQ003 - Invalid request parameter
//	REQ004 - Request body too large
//	REQ005 - Rate limited
//	REQ006 - Busy: every run slot stayed taken for the wait time
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: check the logs for the technical error
//
// # Matching
//
// Sentinel errors are matched with errors.Is first. Errors that cross a
// package boundary without a shared sentinel are matched by a
// case-insensitive substring of their text. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern matches an error either by sentinel or by text.
type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

func (ep errorPattern) matches(err error, lower string) bool {
	if ep.target != nil && errors.Is(err, ep.target) {
		return true
	}
	return ep.pattern != "" && strings.Contains(lower, ep.pattern)
}

// errorPatterns is ordered: specific before general.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Configuration Errors (CFG001-CFG007)
	// =========================================================================
	{
		target: ErrEmptyColumnName,
		msg: UserMessage{
			Message: "No column to explode was named",
			Action:  "Pass --column or set EXPLODE_COLUMN",
			Code:    "CFG001",
		},
	},
	{
		target: ErrColumnNotFound,
		msg: UserMessage{
			Message: "The column to explode is not in the input",
			Action:  "Check the header of the input file",
			Code:    "CFG002",
		},
	},
	{
		target: ErrNoFields,
		msg: UserMessage{
			Message: "No fields to explode were requested",
			Action:  "Pass --fields with at least one field name",
			Code:    "CFG003",
		},
	},
	{
		target: ErrUnknownField,
		msg: UserMessage{
			Message: "Unknown field name",
			Action:  "See --help or GET /api/fields for valid names",
			Code:    "CFG004",
		},
	},
	{
		target: ErrDuplicateField,
		msg: UserMessage{
			Message: "The same output column was requested twice",
			Action:  "Remove the repeated field name",
			Code:    "CFG005",
		},
	},
	{
		target: ErrColumnCollision,
		msg: UserMessage{
			Message: "An exploded column already exists in the input",
			Action:  "Use a different --prefix or pass --overwrite",
			Code:    "CFG006",
		},
	},
	{
		target: ErrDuplicateHeader,
		msg: UserMessage{
			Message: "The input header repeats a column name",
			Action:  "Rename the duplicate column in the input",
			Code:    "CFG007",
		},
	},

	// =========================================================================
	// Row Errors (ROW001)
	// =========================================================================
	{
		target: ErrNotAList,
		msg: UserMessage{
			Message: "A value to expand is not a list",
			Action:  "Drop --expand or fix the reported row",
			Code:    "ROW001",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		target: fs.ErrNotExist,
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the input path",
			Code:    "FILE001",
		},
	},
	{
		pattern: "too many cells",
		msg: UserMessage{
			Message: "A row has more cells than the header",
			Action:  "Check the row for stray tab characters",
			Code:    "FILE002",
		},
	},
	{
		pattern: "gzip:",
		msg: UserMessage{
			Message: "The compressed file could not be read",
			Action:  "Make sure .gz files are gzip compressed",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no header",
		msg: UserMessage{
			Message: "The input is empty",
			Action:  "Provide a file with a header line",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ006)
	// =========================================================================
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller input or raise the timeout",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid request parameter",
		msg: UserMessage{
			Message: "A request parameter is invalid",
			Action:  "Check the query string against GET /",
			Code:    "REQ003",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The uploaded file is too large",
			Action:  "Split the file or use the command line tool",
			Code:    "REQ004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "REQ005",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	lower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.matches(err, lower) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
