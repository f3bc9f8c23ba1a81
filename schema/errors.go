package schema

import "errors"

var (
	// ErrUnknownProvider indicates a session referenced a provider identity
	// that no adapter is registered for.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrSessionNotFound indicates a requested session could not be found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLastSession indicates an attempt to close the only remaining session.
	ErrLastSession = errors.New("cannot close the last session")
	// ErrEmptyPrompt indicates the prompt was empty.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrInvalidName indicates an invalid session name.
	ErrInvalidName = errors.New("invalid session name")
	// ErrEntryNotFound indicates a queued entry could not be found.
	ErrEntryNotFound = errors.New("queue entry not found")
	// ErrAdapterUnavailable indicates no adapter provider is configured.
	ErrAdapterUnavailable = errors.New("adapter provider not configured")
)
