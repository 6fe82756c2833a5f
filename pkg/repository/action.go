package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ActionName is the value of the "action" field of an update action.
type ActionName string

// Action is one update action: its name plus the raw JSON object it came in.
// The payload is decoded by the handler registered for the name.
type Action struct {
	Name    ActionName
	Payload json.RawMessage
}

// NewAction builds an Action from a name and payload fields. It fails when a
// field value cannot be marshaled to JSON.
func NewAction(name ActionName, fields map[string]any) (Action, error) {
	m := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		m[k] = v
	}
	m["action"] = string(name)
	b, err := json.Marshal(m)
	if err != nil {
		return Action{}, fmt.Errorf("action %s: %w", name, err)
	}
	return Action{Name: name, Payload: b}, nil
}

// UnmarshalJSON reads the action name and keeps the whole object as payload.
func (a *Action) UnmarshalJSON(data []byte) error {
	var head struct {
		Action ActionName `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Action == "" {
		return errors.New("update action is missing the 'action' field")
	}
	a.Name = head.Action
	a.Payload = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the original action object.
func (a Action) MarshalJSON() ([]byte, error) {
	if len(a.Payload) == 0 {
		return json.Marshal(map[string]string{"action": string(a.Name)})
	}
	return a.Payload, nil
}

// UpdateRequest is the body of an update: the version the caller last saw and
// the actions to apply as one unit.
type UpdateRequest struct {
	Version int      `json:"version"`
	Actions []Action `json:"actions"`
}

// Validate checks the request shape before any lookup happens.
func (r UpdateRequest) Validate() error {
	if r.Version < 1 {
		return &InvalidInputError{
			ErrCode: CodeInvalidJSONInput,
			Field:   "version",
			Message: "version must be a positive integer",
		}
	}
	return nil
}

// ActionContext is what a handler may know about the request besides the
// resource itself. It deliberately carries no store access.
type ActionContext struct {
	Tenant string
	TypeID TypeID
	Now    time.Time
}

// ActionHandler applies one action to a staging copy of a resource.
type ActionHandler[T any] func(ctx ActionContext, resource T, payload json.RawMessage) error

// ActionTable maps action names to handlers for one kind. Tables are built
// once when the kind is defined and never modified afterwards.
type ActionTable[T any] map[ActionName]ActionHandler[T]

// Names returns the registered action names, sorted.
func (t ActionTable[T]) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Validator is implemented by payloads and drafts that check their own shape.
type Validator interface {
	Validate() error
}

// Handle adapts a handler taking a typed payload P into an ActionHandler.
// The payload is decoded from JSON and, if *P implements Validator, validated
// before fn runs.
func Handle[T any, P any](fn func(ctx ActionContext, resource T, payload P) error) ActionHandler[T] {
	return func(ctx ActionContext, resource T, raw json.RawMessage) error {
		var p P
		if err := decodePayload(raw, &p); err != nil {
			return err
		}
		if v, ok := any(&p).(Validator); ok {
			if err := v.Validate(); err != nil {
				return asEngineError(err)
			}
		}
		return fn(ctx, resource, p)
	}
}

// decodePayload decodes an action object into p, rejecting fields p does not
// declare. The "action" discriminator itself is always allowed.
func decodePayload(raw json.RawMessage, p any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return invalidPayload(err)
	}
	delete(fields, "action")
	body, err := json.Marshal(fields)
	if err != nil {
		return invalidPayload(err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		if field, ok := unknownField(err); ok {
			return &InvalidInputError{
				Field:   field,
				Message: fmt.Sprintf("Unknown field '%s' in update action.", field),
			}
		}
		return invalidPayload(err)
	}
	return nil
}

func invalidPayload(err error) error {
	return &InvalidInputError{
		ErrCode: CodeInvalidJSONInput,
		Message: fmt.Sprintf("Request body does not contain valid JSON: %v", err),
	}
}

// unknownField extracts the field name from the error encoding/json returns
// under DisallowUnknownFields.
func unknownField(err error) (string, bool) {
	rest, ok := strings.CutPrefix(err.Error(), "json: unknown field ")
	if !ok {
		return "", false
	}
	return strings.Trim(rest, `"`), true
}

// asEngineError keeps typed engine errors and turns anything else into an
// InvalidInputError.
func asEngineError(err error) error {
	if err == nil {
		return nil
	}
	var coded CodedError
	if errors.As(err, &coded) {
		return err
	}
	return &InvalidInputError{Message: err.Error()}
}
