// Package transport translates domain operations into named events emitted
// over the socket. Each client resolves the household id lazily through one
// shared Resolver and unwraps envelopes into typed results.
package transport

import (
	"context"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/socket"
	"github.com/platewise/platewise/client/internal/types"
)

// Emitter is the slice of the socket client the transport layer needs.
// Kept as an interface for dependency injection in tests.
type Emitter interface {
	EmitWithAck(ctx context.Context, event string, payload any) (socket.Envelope, error)
}

// payload is the uniform request shape: userId always, householdId once
// resolved, weekStart for week-scoped reads, operation fields under data for
// writes.
type payload struct {
	UserID      string `json:"userId"`
	HouseholdID string `json:"householdId,omitempty"`
	WeekStart   string `json:"weekStart,omitempty"`
	Data        any    `json:"data,omitempty"`
}

// emit sends one acknowledged event and turns ok=false envelopes into domain
// errors. Transport errors pass through untouched. Every event carries a
// userId, so an empty one is rejected before it reaches the wire.
func emit(ctx context.Context, e Emitter, event string, p payload) (socket.Envelope, error) {
	if err := types.RequireUserID(p.UserID); err != nil {
		return socket.Envelope{}, err
	}
	env, err := e.EmitWithAck(ctx, event, p)
	if err != nil {
		return socket.Envelope{}, err
	}
	if !env.OK {
		return env, errs.NewDomain(env.Error, env.Code)
	}
	return env, nil
}

// decode unwraps the envelope's data into T.
func decode[T any](env socket.Envelope) (T, error) {
	return socket.DecodeData[T](env)
}

// isNotFound reports whether err is the NOT_FOUND domain error, which read
// operations treat as a valid empty result.
func isNotFound(err error) bool {
	return errs.DomainCode(err) == socket.CodeNotFound
}
