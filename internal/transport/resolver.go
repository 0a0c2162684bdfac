package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/platewise/platewise/client/internal/types"
)

// Resolver resolves the active household id for a user, at most once.
// All resource clients share one Resolver per session so the "list
// households" call happens a single time no matter how many operations race.
//
// Selection: a case-insensitive match on preferredName wins; otherwise the
// first household returned. A user with no households is an error.
type Resolver struct {
	emitter       Emitter
	userID        string
	preferredName string

	mu       sync.Mutex
	id       string
	inflight chan struct{} // non-nil while a resolution is running
}

// NewResolver builds a lazy resolver. The first Resolve call triggers the
// lookup; concurrent callers share its outcome.
func NewResolver(e Emitter, userID, preferredName string) *Resolver {
	return &Resolver{emitter: e, userID: userID, preferredName: preferredName}
}

// NewKnownResolver builds a resolver whose household id is already known, so
// Resolve never touches the network.
func NewKnownResolver(householdID string) *Resolver {
	return &Resolver{id: householdID}
}

// Resolve returns the memoized household id, performing the remote lookup on
// first use. Concurrent callers wait for the single in-flight lookup instead
// of issuing duplicates. A failed lookup is not memoized; the next caller
// retries.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	for {
		r.mu.Lock()
		if r.id != "" {
			id := r.id
			r.mu.Unlock()
			return id, nil
		}
		if r.inflight == nil {
			done := make(chan struct{})
			r.inflight = done
			r.mu.Unlock()

			id, err := r.lookup(ctx)

			r.mu.Lock()
			if err == nil {
				r.id = id
			}
			r.inflight = nil
			r.mu.Unlock()
			close(done)
			return id, err
		}
		wait := r.inflight
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-wait:
		}
	}
}

func (r *Resolver) lookup(ctx context.Context) (string, error) {
	env, err := emit(ctx, r.emitter, "households:findAll", payload{UserID: r.userID})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("resolve household for user %s: %w", r.userID, types.ErrNoHousehold)
		}
		return "", err
	}
	households, err := decode[[]types.HouseholdDTO](env)
	if err != nil {
		return "", err
	}
	if len(households) == 0 {
		return "", fmt.Errorf("resolve household for user %s: %w", r.userID, types.ErrNoHousehold)
	}
	if r.preferredName != "" {
		for _, h := range households {
			if strings.EqualFold(h.Name, r.preferredName) {
				return h.ID, nil
			}
		}
	}
	return households[0].ID, nil
}
