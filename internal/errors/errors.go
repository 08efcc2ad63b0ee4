// Package errors defines the coded error types shared across TravelBot.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown  = "UNKNOWN"
	CodeDatabase = "DATABASE"
	CodeConfig   = "CONFIG"
	CodeProvider = "PROVIDER"
	CodeMedia    = "MEDIA"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the application code carried by err, or CodeUnknown if it doesn't.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

type DatabaseError struct {
	base Error
}

func (e *DatabaseError) Error() string {
	return e.base.Error()
}

func (e *DatabaseError) Code() string {
	return e.base.Code()
}

func (e *DatabaseError) Unwrap() error {
	return e.base.Unwrap()
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{
		base: Error{
			code:    CodeDatabase,
			message: message,
			err:     cause,
		},
	}
}

type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string {
	return e.base.Error()
}

func (e *ConfigError) Code() string {
	return e.base.Code()
}

func (e *ConfigError) Unwrap() error {
	return e.base.Unwrap()
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{
		base: Error{
			code:    CodeConfig,
			message: message,
			err:     cause,
		},
	}
}

// MediaError reports a missing asset or a failed media/location send.
type MediaError struct {
	base  Error
	Asset string
}

func (e *MediaError) Error() string {
	return e.base.Error()
}

func (e *MediaError) Code() string {
	return e.base.Code()
}

func (e *MediaError) Unwrap() error {
	return e.base.Unwrap()
}

func NewMediaError(asset, message string, cause error) error {
	return &MediaError{
		base: Error{
			code:    CodeMedia,
			message: message,
			err:     cause,
		},
		Asset: asset,
	}
}

// ProviderKind classifies why an LLM provider call failed.
type ProviderKind string

const (
	KindAuth        ProviderKind = "auth"
	KindQuota       ProviderKind = "quota"
	KindTimeout     ProviderKind = "timeout"
	KindNetwork     ProviderKind = "network"
	KindProvider    ProviderKind = "provider"
	KindMalformed   ProviderKind = "malformed"
	// KindUnavailable means the call was skipped because the provider
	// failed repeatedly and its circuit breaker is open.
	KindUnavailable ProviderKind = "unavailable"
)

// ProviderError is returned by LLM providers. Kind only changes how the
// failure is logged; every kind resolves to the fallback reply.
type ProviderError struct {
	base     Error
	Provider string
	Kind     ProviderKind
	Status   int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Provider, e.Kind, e.base.Error())
}

func (e *ProviderError) Code() string {
	return e.base.Code()
}

func (e *ProviderError) Unwrap() error {
	return e.base.Unwrap()
}

func NewProviderError(provider string, kind ProviderKind, status int, message string, cause error) error {
	return &ProviderError{
		base: Error{
			code:    CodeProvider,
			message: message,
			err:     cause,
		},
		Provider: provider,
		Kind:     kind,
		Status:   status,
	}
}

// Kind returns the ProviderKind of err, or KindProvider when err is not a ProviderError.
func Kind(err error) ProviderKind {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Kind
	}

	return KindProvider
}

// KindFromStatus maps an HTTP status code returned by a provider to a ProviderKind.
func KindFromStatus(status int) ProviderKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindQuota
	case status == 408 || status == 504:
		return KindTimeout
	default:
		return KindProvider
	}
}
