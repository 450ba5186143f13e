package autoremote

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPayload = errors.New("payload is required")
	ErrInvalidURL     = errors.New("invalid url")
	ErrKeyNotFound    = errors.New("key not found in url")
)

// RequestError reports a failed call to the remote API. StatusCode is zero
// when no response was received.
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type KeyNotFoundError struct {
	URL string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("no key parameter in %s", e.URL)
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}
