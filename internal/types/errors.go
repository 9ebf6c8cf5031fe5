package types

const (
	ErrorTypeProvider = "PROVIDER"
	ErrorTypeUnknown  = "UNKNOWN"
)

// ErrorResponse is the error envelope every inbound operation returns on
// failure.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ReviewEvent is the closed set of accepted submit-review event types.
type ReviewEvent string

const (
	ReviewEventApprove        ReviewEvent = "approve"
	ReviewEventRequestChanges ReviewEvent = "requestchanges"
	ReviewEventComment        ReviewEvent = "comment"
)

// Valid reports whether e is one of the accepted review event types.
func (e ReviewEvent) Valid() bool {
	switch e {
	case ReviewEventApprove, ReviewEventRequestChanges, ReviewEventComment:
		return true
	}
	return false
}
