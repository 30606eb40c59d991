package client

import "fmt"

// NotFoundError indicates the requested resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	return ok
}

// UnauthorizedError indicates the caller does not own the resource.
type UnauthorizedError struct {
	Resource string
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf("not authorized for %s", e.Resource)
}

// APIError is a non-OK response from the snap service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// ErrAccountNotFunded indicates a source account that does not exist on the
// ledger yet.
var ErrAccountNotFunded = fmt.Errorf("account not funded")

// SubmissionError is a transaction rejected by the network.
type SubmissionError struct {
	ResultCode string
}

func (e SubmissionError) Error() string {
	return fmt.Sprintf("transaction failed: %s", e.ResultCode)
}
