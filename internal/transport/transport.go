// Package transport defines the interface for pluggable utterance transports.
//
// Each transport (gRPC, HTTP) implements this interface and feeds recognized
// utterances into the pipeline. The pipeline doesn't care how utterances
// arrive — it only works with the Transport contract.
package transport

import (
	"context"

	"github.com/voxlate/voxlate/internal/event"
)

// Handler is a function that resolves an incoming utterance into a
// translation event. The pipeline provides this handler to each transport.
type Handler func(ctx context.Context, utt *event.Utterance) (*event.Translation, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting incoming utterances and feeds them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
