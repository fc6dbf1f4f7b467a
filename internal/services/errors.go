package services

import (
	"errors"
	"fmt"

	"github.com/openedu-labs/lms-service/internal/validator"
)

// ValidationErrors is re-exported so handlers can match on it without
// importing the validator package.
type ValidationErrors = validator.ValidationErrors
type ValidationError = validator.ValidationError

// NewValidationError builds a single-field ValidationErrors value.
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Value: value, Rule: "business_logic"}}
}

// Sentinel errors shared across services.
var (
	// Identifier resolution
	ErrMissingIdentifier  = errors.New("missing identifier")
	ErrCannotCanonicalize = errors.New("cannot canonicalize identifier")

	// Not-found per resource
	ErrUserNotFound        = errors.New("user not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrMessageNotFound     = errors.New("message not found")
	ErrRoleRequestNotFound = errors.New("role request not found")
	ErrRoleRequestDecided  = errors.New("role request already decided")
)

// PermissionError carries the denied resource/action pair; handlers map it
// to 403.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s (%s)", e.Action, e.Resource, e.Reason)
}

// BusinessRuleError marks a request that is well-formed but violates a
// domain rule; handlers map it to 422.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}
