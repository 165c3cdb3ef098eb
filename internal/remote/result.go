package remote

import (
	"tickethub/internal/ticketing/models"
	dErrors "tickethub/pkg/domain-errors"
)

// Status is the three-outcome code every remote call reports.
type Status int

const (
	StatusOK        Status = 200
	StatusRejected  Status = 422
	StatusTransport Status = 500
)

// Messages reported to users.
const (
	MsgVerified         = "Ghana card verified successfully"
	MsgVerifyFailed     = "Verification failed."
	MsgTransport        = "Network or server error"
	MsgTicketIssued     = "Ticket successfully generated!"
	MsgIssueFailed      = "Ticket generation failed."
	MsgPaymentSucceeded = "Payment successful!"
	MsgPaymentFailed    = "Payment failed."
	MsgTicketsFailed    = "Failed to retrieve your tickets."
	MsgCatalogFailed    = "Failed to load ticket types."
)

// Result is the outcome of a remote call. It never carries a Go error;
// callers branch on Status.
type Result struct {
	Status  Status
	Message string
}

func (r Result) OK() bool { return r.Status == StatusOK }

// Err converts a non-OK result into a domain error carrying the message:
// rejections become CodeRejected, everything else CodeTransport.
func (r Result) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusRejected:
		return dErrors.New(dErrors.CodeRejected, r.Message)
	default:
		return dErrors.New(dErrors.CodeTransport, r.Message)
	}
}

// Outcome is the metrics/trace label for the status.
func (r Result) Outcome() string {
	switch r.Status {
	case StatusOK:
		return "success"
	case StatusRejected:
		return "rejected"
	default:
		return "transport"
	}
}

// VerifyResult carries the identity record on success.
type VerifyResult struct {
	Result
	Record *models.IdentityRecord
}

func ok(msg string) Result { return Result{Status: StatusOK, Message: msg} }

func rejected(msg, fallback string) Result {
	if msg == "" {
		msg = fallback
	}
	return Result{Status: StatusRejected, Message: msg}
}

func transportFailure() Result {
	return Result{Status: StatusTransport, Message: MsgTransport}
}
