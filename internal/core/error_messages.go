package core

// error_messages.go maps errors to user-facing messages with support codes.
//
// Codes by category:
//
//	VAL001  - Invalid submission: name or height out of range
//	SUB001  - Unknown upload id: the id was never issued (or the server restarted)
//	SUB002  - Already uploaded: a file is already bound to this submission
//	UPL001  - Invalid payload: no single "file" part with a filename
//	UPL002  - Malformed stream: multipart framing or connection error
//	UPL003  - Payload too large: body exceeded the configured limit
//	UPL004  - System busy: all upload slots are in use
//	UPL005  - Unsupported media type: body is not multipart/form-data
//	RATE001 - Too many requests
//	ERR000  - Fallback for anything unrecognized
//
// Sentinel errors are matched with errors.Is first; plain-text patterns cover
// errors that originate outside this package (context, middleware).

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotMultipart is returned when an upload body is not multipart/form-data.
var ErrNotMultipart = errors.New("request is not multipart/form-data")

// UserMessage is a user-friendly rendering of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorMapping struct {
	target error
	msg    UserMessage
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// Order matters: ErrPayloadTooLarge wraps ErrMalformedStream, so it is
// checked first.
var errorMappings = []errorMapping{
	{
		target: ErrUnknownSubmission,
		msg: UserMessage{
			Message: "Unknown upload ID",
			Action:  "Submit the form again to get a new upload ID",
			Code:    "SUB001",
		},
	},
	{
		target: ErrAlreadyBound,
		msg: UserMessage{
			Message: "A file was already uploaded for this submission",
			Action:  "Submit the form again to upload another file",
			Code:    "SUB002",
		},
	},
	{
		target: ErrInvalidPayload,
		msg: UserMessage{
			Message: "Sent invalid payload",
			Action:  `Send exactly one part named "file" with a filename`,
			Code:    "UPL001",
		},
	},
	{
		target: ErrPayloadTooLarge,
		msg: UserMessage{
			Message: "Upload exceeds the maximum size",
			Action:  "Upload a smaller file",
			Code:    "UPL003",
		},
	},
	{
		target: ErrMalformedStream,
		msg: UserMessage{
			Message: "Upload stream could not be read",
			Action:  "Check your connection and try again",
			Code:    "UPL002",
		},
	},
	{
		target: ErrTooManyUploads,
		msg: UserMessage{
			Message: "Too many uploads in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL004",
		},
	},
	{
		target: ErrNotMultipart,
		msg: UserMessage{
			Message: "Upload must be sent as multipart/form-data",
			Action:  "Send the file using a multipart form",
			Code:    "UPL005",
		},
	},
}

var errorPatterns = []errorPattern{
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check server logs for the technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("bind: %w", ErrAlreadyBound))
//	// msg.Code == "SUB002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return UserMessage{
			Message: ve.Error(),
			Action:  "Name must be 1-100 characters; height, if given, a whole number from 1 to 500",
			Code:    "VAL001",
		}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
