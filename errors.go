package client

import (
	"errors"

	errs "github.com/platewise/platewise/client/internal/errors"
	"github.com/platewise/platewise/client/internal/pushq"
	"github.com/platewise/platewise/client/internal/types"
)

// ErrNotAuthenticated is returned by operations that require a session when
// none is active.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrBackPressure is returned when the push dispatch queue is full.
var ErrBackPressure = pushq.ErrQueueFull

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	ErrNotFound    = types.ErrNotFound
	ErrNoHousehold = types.ErrNoHousehold
)

// IsTransportError reports whether err is a connection-level failure
// (connection lost, timeout, malformed envelope). These always warrant a
// retry suggestion rather than a specific message.
func IsTransportError(err error) bool { return errs.IsTransport(err) }

// IsDomainError reports whether err carries a backend-reported failure.
func IsDomainError(err error) bool { return errs.IsDomain(err) }

// UserMessage maps err to a user-facing string: transport errors become a
// generic retry suggestion, known backend phrases are substituted, unknown
// ones pass through, and cancellations map to "".
func UserMessage(err error) string { return errs.UserMessage(err) }

// InvitationStatusMessage is the user-facing line for a non-pending
// invitation preview status.
func InvitationStatusMessage(status InvitationStatus) string {
	return errs.InvitationStatusMessage(string(status))
}
