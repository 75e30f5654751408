package streaming

import (
	"errors"
	"fmt"
	"net/http"

	"voxelview/internal/world"
)

var (
	// ErrEmptyBody is returned when the endpoint answers with no bytes.
	ErrEmptyBody = errors.New("empty chunk body")
	// ErrCancelled ends a load that was abandoned by disposal or by the
	// camera moving away. It is never retried and never logged.
	ErrCancelled = errors.New("chunk load cancelled")
	// ErrDuplicatePublish is returned by Registry.Publish for a key that is
	// already live.
	ErrDuplicatePublish = errors.New("chunk already published")

	errAttemptTimeout = errors.New("attempt timed out")
)

// TransportError is a network failure, a non-success status, or an attempt
// timeout. Status is zero when no response was received.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("chunk transport: HTTP %d %s", e.Status, http.StatusText(e.Status))
	}
	return "chunk transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// SizeMismatchError reports a body whose length is not CHUNK³.
type SizeMismatchError struct {
	Got, Want int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("chunk body is %d bytes, want %d", e.Got, e.Want)
}

// MaterializeError reports invalid voxel content or a GPU allocation failure.
type MaterializeError struct {
	Key world.ChunkKey
	Err error
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("materialize chunk %v: %v", e.Key, e.Err)
}

func (e *MaterializeError) Unwrap() error { return e.Err }

// FallbackError reports a failure of the local generator.
type FallbackError struct {
	Err error
}

func (e *FallbackError) Error() string { return "fallback generator: " + e.Err.Error() }

func (e *FallbackError) Unwrap() error { return e.Err }

// IsRetryable reports whether a fetch attempt that failed with err may be
// issued again.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrCancelled) {
		return false
	}
	var te *TransportError
	var sm *SizeMismatchError
	return errors.As(err, &te) || errors.As(err, &sm) || errors.Is(err, ErrEmptyBody)
}
