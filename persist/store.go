// Package persist defines the contract between the canvas engine and its
// persistence collaborator, together with an HTTP implementation and an
// in-memory fake for tests.
package persist

import (
	"context"
	"errors"
)

// PayloadRef identifies a stored binary payload (image or audio) owned by
// the authenticated account. Ownership is enforced by the collaborator,
// not by the engine.
type PayloadRef string

// Sentinel errors for the persist package.
var (
	// ErrNotFound is returned when a document or payload reference cannot
	// be resolved for the caller.
	ErrNotFound = errors.New("persist: not found")

	// ErrEmptyPayload is returned when an empty payload is submitted.
	ErrEmptyPayload = errors.New("persist: empty payload")
)

// Store is the persistence collaborator. Every save is a full-document
// overwrite: there is no partial-update variant, and concurrent saves
// resolve last-write-wins.
type Store interface {
	// Document returns the most recently saved document blob, or
	// (nil, nil) when none has been saved yet.
	Document(ctx context.Context) ([]byte, error)

	// PutDocument overwrites the document with blob. Idempotent.
	PutDocument(ctx context.Context, blob []byte) error

	// PutImage stores a full-resolution image payload together with its
	// pre-computed thumbnail and returns a reference for later gets.
	PutImage(ctx context.Context, payload, thumbnail []byte) (PayloadRef, error)

	// GetImage returns the full-resolution payload for ref, or
	// ErrNotFound if ref does not resolve for the caller.
	GetImage(ctx context.Context, ref PayloadRef) ([]byte, error)

	// DeleteImage removes a stored image. No-op if already absent.
	DeleteImage(ctx context.Context, ref PayloadRef) error

	// PutAudio, GetAudio and DeleteAudio are symmetric to the image
	// operations.
	PutAudio(ctx context.Context, payload []byte) (PayloadRef, error)
	GetAudio(ctx context.Context, ref PayloadRef) ([]byte, error)
	DeleteAudio(ctx context.Context, ref PayloadRef) error
}
