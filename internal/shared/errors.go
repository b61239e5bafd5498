package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("operation not permitted")

	// Store and service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrGatewayRequest     = fmt.Errorf("notification gateway request failed")
	ErrMemberNotFound     = fmt.Errorf("member not found")
	ErrAccountNotFound    = fmt.Errorf("account not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
