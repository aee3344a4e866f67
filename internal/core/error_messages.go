package core

// # Error Codes Reference
//
// User-facing error messages carry a code that can be quoted to support.
//
//	REC001 - Not found: The record does not exist
//	REC002 - Conflict: A record with this key already exists
//	STK001 - Out of stock: The item is not available
//
//	VAL001 - Invalid date
//	VAL002 - Invalid number
//	VAL003 - Required field is empty
//	VAL004 - Unknown column
//	VAL005 - Invalid whole number
//	VAL006 - Malformed request body
//	VAL007 - Invalid record id
//	VAL008 - Derived or fixed field edited
//
//	IMG001 - No images in request
//	IMG002 - No image could be processed
//	IMG003 - Request too large
//	IMG004 - Too many image batches in progress
//	IMG005 - Image processing not configured
//
//	STO001 - Storage failure
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	RATE001 - Too many requests
//	AUTH001 - Missing or invalid API key
//
//	ERR000 - Unknown error (check application logs)
//
// Sentinel errors are matched with errors.Is first. Anything else falls
// through to case-insensitive substring patterns; the first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrNotFound, UserMessage{"The record does not exist", "Refresh the list and try again", "REC001"}},
	{ErrConflict, UserMessage{"A record with this key already exists", "Use a different key or edit the existing record", "REC002"}},
	{ErrOutOfStock, UserMessage{"Item out of stock", "Restock the item or choose another one", "STK001"}},
	{ErrNoImagesProvided, UserMessage{"No images provided", "Attach at least one PNG or JPEG image", "IMG001"}},
	{ErrNoImagesProcessed, UserMessage{"No images were successfully processed", "Check that the files are valid PNG or JPEG images", "IMG002"}},
	{ErrBatchLimiterBusy, UserMessage{"Too many image batches in progress", "Please wait a moment and try again", "IMG004"}},
	{ErrImagesUnavailable, UserMessage{"Image processing is not available", "Contact the administrator", "IMG005"}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{"invalid date", UserMessage{"Invalid date format detected", "Use YYYY-MM-DD", "VAL001"}},
	{"invalid number", UserMessage{"Invalid number format detected", "Use a plain decimal such as 12.50", "VAL002"}},
	{"required field", UserMessage{"Required field is empty", "Fill in every required field", "VAL003"}},
	{"unknown column", UserMessage{"The record contains an unknown field", "Remove fields that are not part of the record", "VAL004"}},
	{"invalid whole number", UserMessage{"Value must be a whole number of zero or more", "Enter a value such as 0, 1 or 12", "VAL005"}},
	{"invalid id", UserMessage{"Ids must be whole numbers of 1 or more", "Leave the id empty to have one assigned", "VAL007"}},
	{"cannot be changed", UserMessage{"This field cannot be edited here", "Edit the order to change its ledger figures", "VAL008"}},
	{"invalid request body", UserMessage{"The request body could not be read", "Send a JSON object of field names to values", "VAL006"}},

	// Request
	{"request too large", UserMessage{"Request exceeds the maximum upload size", "Send fewer or smaller images", "IMG003"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "REQ001"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Please try again", "REQ002"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
	{"api key", UserMessage{"Missing or invalid API key", "Send a valid key in the X-API-Key header", "AUTH001"}},
}

var storageMessage = UserMessage{
	Message: "Data could not be read or saved",
	Action:  "Please try again or contact support",
	Code:    "STO001",
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	// Storage errors often wrap context errors; those are more useful to
	// report than the generic storage message.
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var se *StorageError
	if errors.As(err, &se) {
		return storageMessage
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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
