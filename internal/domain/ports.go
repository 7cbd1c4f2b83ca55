package domain

import (
	"context"
	"errors"
	"fmt"
)

// Storage is a string-keyed durable key/value store.
type Storage interface {
	// GetItem returns ok=false when the key is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
}

// CatalogClient reads products from the remote catalog.
type CatalogClient interface {
	FetchList(ctx context.Context) ([]Product, error)
	FetchByID(ctx context.Context, id int64) (Product, error)
}

// CartPersister loads and saves cart snapshots. Implementations absorb
// their own failures.
type CartPersister interface {
	Load(ctx context.Context) (CartState, bool)
	Save(state CartState)
}

// MessageSubscriber delivers catalog refresh notices to a handler; ack and
// redelivery are up to the adapter.
type MessageSubscriber interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, n RefreshNotice) error) error
}

// ErrNotFound reports a product id unknown to the loaded catalog.
var ErrNotFound = notFoundError("not found")

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

// DefaultNetworkMessage is used when a catalog failure carries no message.
const DefaultNetworkMessage = "Network error"

// NetworkError is a transport or non-2xx failure of a catalog call.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Message == "" {
		return DefaultNetworkMessage
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// PersistenceError is a storage read, write or decode failure.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrorMessage returns the user-visible message of err, or fallback when
// err carries none.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		if ne.Message != "" {
			return ne.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
