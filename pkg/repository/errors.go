package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes reported in ErrorObject.Code.
const (
	CodeResourceNotFound       = "ResourceNotFound"
	CodeConcurrentModification = "ConcurrentModification"
	CodeInvalidOperation       = "InvalidOperation"
	CodeInvalidInput           = "InvalidInput"
	CodeInvalidJSONInput       = "InvalidJsonInput"
	CodeDuplicateField         = "DuplicateField"
	CodeGeneral                = "General"
)

// NotFoundError is returned when no resource has the requested id or key
// within the tenant and kind.
type NotFoundError struct {
	TypeID TypeID
	ID     string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("The Resource with key '%s' was not found.", e.Key)
	}
	return fmt.Sprintf("The Resource with ID '%s' was not found.", e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Code returns the platform error code.
func (e *NotFoundError) Code() string { return CodeResourceNotFound }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return fmt.Sprintf("Check that the %s exists in this project. Resources are not shared between projects.", e.TypeID)
}

// ConcurrentModificationError is returned when the version supplied with an
// update or delete does not match the stored version.
type ConcurrentModificationError struct {
	TypeID          TypeID
	ID              string
	ExpectedVersion int
	CurrentVersion  int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("Object %s has a different version than expected. Expected: %d - Actual: %d.",
		e.ID, e.ExpectedVersion, e.CurrentVersion)
}

// StatusCode returns the HTTP status code for this error.
func (e *ConcurrentModificationError) StatusCode() int { return http.StatusConflict }

// Code returns the platform error code.
func (e *ConcurrentModificationError) Code() string { return CodeConcurrentModification }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ConcurrentModificationError) Hint() string {
	return fmt.Sprintf("Fetch the %s again and retry with version %d.", e.TypeID, e.CurrentVersion)
}

// UnsupportedActionError is returned when an update action name is not
// registered for the kind.
type UnsupportedActionError struct {
	TypeID TypeID
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("Update action '%s' is not supported for resources of type '%s'.", e.Action, e.TypeID)
}

// StatusCode returns the HTTP status code for this error.
func (e *UnsupportedActionError) StatusCode() int { return http.StatusBadRequest }

// Code returns the platform error code.
func (e *UnsupportedActionError) Code() string { return CodeInvalidOperation }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *UnsupportedActionError) Hint() string {
	return "Check the action name; names are case sensitive."
}

// InvalidInputError is returned when a draft, an action payload or a query
// parameter fails validation.
type InvalidInputError struct {
	// ErrCode overrides CodeInvalidInput when set (e.g. CodeInvalidJSONInput)
	ErrCode string
	Message string
	Field   string
	// Details lists individual violations, e.g. one per failed schema rule
	Details []ErrorObject
}

func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("Invalid value for field '%s': %s", e.Field, e.Message)
	}
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *InvalidInputError) StatusCode() int { return http.StatusBadRequest }

// Code returns the platform error code.
func (e *InvalidInputError) Code() string {
	if e.ErrCode != "" {
		return e.ErrCode
	}
	return CodeInvalidInput
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidInputError) Hint() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value of field %q in your request body.", e.Field)
	}
	return "Check your request body format and required fields."
}

// DuplicateFieldError is returned when a unique field (such as key) already
// belongs to another resource of the same kind.
type DuplicateFieldError struct {
	TypeID TypeID
	Field  string
	Value  string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("A duplicate value '\"%s\"' exists for field '%s'.", e.Value, e.Field)
}

// StatusCode returns the HTTP status code for this error.
func (e *DuplicateFieldError) StatusCode() int { return http.StatusBadRequest }

// Code returns the platform error code.
func (e *DuplicateFieldError) Code() string { return CodeDuplicateField }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *DuplicateFieldError) Hint() string {
	return fmt.Sprintf("Choose a %s that is not used by another %s.", e.Field, e.TypeID)
}

// StatusCodeError is an interface for errors that have an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// CodedError is an interface for errors that carry a platform error code.
type CodedError interface {
	error
	Code() string
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}

// ErrorObject is one entry of the errors list in an error response.
type ErrorObject struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	Field          string `json:"field,omitempty"`
	Action         string `json:"action,omitempty"`
	DuplicateValue string `json:"duplicateValue,omitempty"`
	CurrentVersion int    `json:"currentVersion,omitempty"`
}

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Errors     []ErrorObject `json:"errors"`
}

// ToErrorResponse converts an error into an ErrorResponse.
// Uses errors.As so wrapped engine errors are recognized.
func ToErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
	}

	var (
		nf  *NotFoundError
		cm  *ConcurrentModificationError
		ua  *UnsupportedActionError
		ii  *InvalidInputError
		dup *DuplicateFieldError
	)
	switch {
	case errors.As(err, &nf):
		resp.StatusCode = nf.StatusCode()
		resp.Message = nf.Error()
		resp.Errors = []ErrorObject{{Code: nf.Code(), Message: nf.Error()}}
	case errors.As(err, &cm):
		resp.StatusCode = cm.StatusCode()
		resp.Message = cm.Error()
		resp.Errors = []ErrorObject{{Code: cm.Code(), Message: cm.Error(), CurrentVersion: cm.CurrentVersion}}
	case errors.As(err, &ua):
		resp.StatusCode = ua.StatusCode()
		resp.Message = ua.Error()
		resp.Errors = []ErrorObject{{Code: ua.Code(), Message: ua.Error(), Action: ua.Action}}
	case errors.As(err, &ii):
		resp.StatusCode = ii.StatusCode()
		resp.Message = ii.Error()
		if len(ii.Details) > 0 {
			resp.Errors = append([]ErrorObject(nil), ii.Details...)
		} else {
			resp.Errors = []ErrorObject{{Code: ii.Code(), Message: ii.Error(), Field: ii.Field}}
		}
	case errors.As(err, &dup):
		resp.StatusCode = dup.StatusCode()
		resp.Message = dup.Error()
		resp.Errors = []ErrorObject{{Code: dup.Code(), Message: dup.Error(), Field: dup.Field, DuplicateValue: dup.Value}}
	default:
		resp.Errors = []ErrorObject{{Code: CodeGeneral, Message: err.Error()}}
	}
	return resp
}
