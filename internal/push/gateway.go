package push

import "context"

// Message is a platform-neutral multicast push message. Data is passed
// through to the client app untouched.
type Message struct {
	Title  string
	Body   string
	Data   map[string]string
	Tokens []string
}

// TokenResult is the delivery outcome for a single token.
type TokenResult struct {
	Success bool
	Error   string
}

// Response aggregates a multicast send. Results holds one entry per input
// token, in the same order.
type Response struct {
	SuccessCount int
	FailureCount int
	Results      []TokenResult
}

// Gateway sends one multicast message to a batch of device tokens.
type Gateway interface {
	SendMulticast(ctx context.Context, msg *Message) (*Response, error)
}
