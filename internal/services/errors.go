package services

import "fmt"

// Service errors
var (
	ErrNoTablesSpecified = &ServiceError{Message: "no tables specified"}
	ErrInvalidLimit      = &ServiceError{Message: "limit must be between 1 and 500"}
	ErrInvalidQRSize     = &ServiceError{Message: "size must be between 64 and 1024"}
	ErrNoCheckInURL      = &ServiceError{Message: "check-in URL is not configured"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}
