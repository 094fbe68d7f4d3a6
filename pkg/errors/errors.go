package errors

import "fmt"

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized indicates a failed authentication attempt
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrConfiguration indicates the account is missing data required to sync.
// The user has to re-connect the Etsy account to fix it.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return e.Reason
}

// ErrShopResolution indicates the remote source returned no shop candidates
type ErrShopResolution struct {
	Reason string
}

func (e *ErrShopResolution) Error() string {
	return e.Reason
}

// ErrPageFetch indicates a non-success response from the receipts endpoint.
// It aborts the remainder of a sync run; pages already processed stay committed.
type ErrPageFetch struct {
	StatusCode int
	Body       string
}

func (e *ErrPageFetch) Error() string {
	return fmt.Sprintf("receipts fetch failed: status %d, body: %s", e.StatusCode, e.Body)
}

// ErrInvalidStateTransition indicates a close/archive precondition violation
type ErrInvalidStateTransition struct {
	From   string
	To     string
	Reason string
}

func (e *ErrInvalidStateTransition) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}
