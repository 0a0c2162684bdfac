package errors

import "strings"

// User-facing strings. Transport failures always collapse into one generic
// retry prompt; domain errors go through a phrase table that recognises the
// backend's known messages, falling back to the raw message.

const (
	// MsgRetry is the generic message for connection loss and timeouts.
	MsgRetry = "Connection problem. Please check your network and try again."

	msgPermission     = "You don't have permission to do that."
	msgNotMember      = "You are not a member of this household."
	msgInviteRedeemed = "This invitation has already been used."
	msgInviteExpired  = "This invitation has expired."
	msgInviteMissing  = "This invitation doesn't exist."
	msgServerError    = "Something went wrong on our side. Please try again later."
)

// knownPhrases maps backend message substrings (lower-cased) to user-facing
// strings. First match in order wins.
var knownPhrases = []struct {
	marker string
	text   string
}{
	{"permission denied", msgPermission},
	{"not a member", msgNotMember},
	{"already redeemed", msgInviteRedeemed},
	{"already been used", msgInviteRedeemed},
	{"invitation expired", msgInviteExpired},
	{"invitation has expired", msgInviteExpired},
	{"invitation not found", msgInviteMissing},
	{"internal server error", msgServerError},
}

// UserMessage converts err into the string shown to the user. Cancellations
// produce "" (never surfaced); transport errors a generic retry prompt;
// domain errors a mapped or raw backend message.
func UserMessage(err error) string {
	if err == nil || IsCancellation(err) {
		return ""
	}
	if IsTransport(err) {
		return MsgRetry
	}
	var raw string
	if ce, ok := err.(*ClassifiedError); ok {
		raw = ce.Message
	} else {
		raw = err.Error()
	}
	lowered := strings.ToLower(raw)
	for _, p := range knownPhrases {
		if strings.Contains(lowered, p.marker) {
			return p.text
		}
	}
	return raw
}

// InvitationStatusMessage maps a non-PENDING invitation preview status to the
// message shown instead of a join prompt.
func InvitationStatusMessage(status string) string {
	switch status {
	case "ALREADY_MEMBER":
		return "You are already a member of this household."
	case "EXPIRED":
		return msgInviteExpired
	case "REDEEMED":
		return msgInviteRedeemed
	case "NOT_FOUND":
		return msgInviteMissing
	default:
		return msgInviteMissing
	}
}
