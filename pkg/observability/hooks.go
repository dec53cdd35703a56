// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about message encoding, publishing, and archiving.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so pkg/wire, pkg/transport
// and pkg/archive can emit events without importing a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPublishHooks(&myPublishHooks{})
//	    observability.SetArchiveHooks(&myArchiveHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Publish().OnPublishStart(ctx, addr, len(payload))
//	// ... send ...
//	observability.Publish().OnPublishComplete(ctx, addr, len(payload), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Encode Hooks
// =============================================================================

// EncodeHooks receives events from the wire encoder and decoder.
type EncodeHooks interface {
	// OnEncode records a finished encode. kind is "figure" or "dict".
	OnEncode(ctx context.Context, kind string, size int, duration time.Duration)

	// OnDecode records a finished decode, err is nil on success.
	OnDecode(ctx context.Context, kind string, size int, err error)
}

// =============================================================================
// Publish Hooks
// =============================================================================

// PublishHooks receives events from the publisher and subscribers.
type PublishHooks interface {
	// OnConnect records the one-time socket bind or connect.
	OnConnect(ctx context.Context, addr string, err error)

	// OnPublishStart records a publish attempt.
	OnPublishStart(ctx context.Context, addr string, size int)

	// OnPublishComplete records the outcome of a publish attempt.
	OnPublishComplete(ctx context.Context, addr string, size int, duration time.Duration, err error)

	// OnReceive records a message delivered to a subscriber.
	OnReceive(ctx context.Context, addr string, size int)
}

// =============================================================================
// Archive Hooks
// =============================================================================

// ArchiveHooks receives events from archive stores.
type ArchiveHooks interface {
	// OnArchiveHit records a successful lookup.
	OnArchiveHit(ctx context.Context, backend string)

	// OnArchiveMiss records a lookup for an absent key.
	OnArchiveMiss(ctx context.Context, backend string)

	// OnArchivePut records a write.
	OnArchivePut(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEncodeHooks is a no-op implementation of EncodeHooks.
type NoopEncodeHooks struct{}

func (NoopEncodeHooks) OnEncode(context.Context, string, int, time.Duration) {}
func (NoopEncodeHooks) OnDecode(context.Context, string, int, error)         {}

// NoopPublishHooks is a no-op implementation of PublishHooks.
type NoopPublishHooks struct{}

func (NoopPublishHooks) OnConnect(context.Context, string, error)                            {}
func (NoopPublishHooks) OnPublishStart(context.Context, string, int)                         {}
func (NoopPublishHooks) OnPublishComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPublishHooks) OnReceive(context.Context, string, int)                              {}

// NoopArchiveHooks is a no-op implementation of ArchiveHooks.
type NoopArchiveHooks struct{}

func (NoopArchiveHooks) OnArchiveHit(context.Context, string)      {}
func (NoopArchiveHooks) OnArchiveMiss(context.Context, string)     {}
func (NoopArchiveHooks) OnArchivePut(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	encodeHooks  EncodeHooks  = NoopEncodeHooks{}
	publishHooks PublishHooks = NoopPublishHooks{}
	archiveHooks ArchiveHooks = NoopArchiveHooks{}
	hooksMu      sync.RWMutex
)

// SetEncodeHooks registers custom encode hooks.
// This should be called once at application startup before any encoding.
func SetEncodeHooks(h EncodeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		encodeHooks = h
	}
}

// SetPublishHooks registers custom publish hooks.
// This should be called once at application startup before any publishing.
func SetPublishHooks(h PublishHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		publishHooks = h
	}
}

// SetArchiveHooks registers custom archive hooks.
func SetArchiveHooks(h ArchiveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		archiveHooks = h
	}
}

// Encode returns the registered encode hooks.
func Encode() EncodeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return encodeHooks
}

// Publish returns the registered publish hooks.
func Publish() PublishHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return publishHooks
}

// Archive returns the registered archive hooks.
func Archive() ArchiveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return archiveHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	encodeHooks = NoopEncodeHooks{}
	publishHooks = NoopPublishHooks{}
	archiveHooks = NoopArchiveHooks{}
}
