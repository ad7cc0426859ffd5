package roundservice

import "errors"

// Domain errors for the round service. Handlers treat them as normal outcomes
// (publish a failure event and ack) rather than retrying.
var (
	// ErrRoundNotFound indicates the round does not exist.
	ErrRoundNotFound = errors.New("round not found")

	// ErrInvalidRoundID indicates an empty round ID was provided.
	ErrInvalidRoundID = errors.New("invalid round ID")
)
