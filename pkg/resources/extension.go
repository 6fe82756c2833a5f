package resources

import (
	"fmt"

	"github.com/getmockd/commercemock/pkg/repository"
)

// Destination types.
const (
	DestinationHTTP                = "HTTP"
	DestinationAWSLambda           = "AWSLambda"
	DestinationGoogleCloudFunction = "GoogleCloudFunction"
)

// maskedValue replaces secrets in every response.
const maskedValue = "****"

// maxExtensionTimeout is the largest timeoutInMs accepted.
const maxExtensionTimeout = 10000

// Extension calls an external endpoint when resources of the trigger types change.
type Extension struct {
	repository.Base
	Key         string               `json:"key,omitempty"`
	Destination ExtensionDestination `json:"destination"`
	Triggers    []ExtensionTrigger   `json:"triggers"`
	TimeoutInMs *int                 `json:"timeoutInMs,omitempty"`
}

// DocumentKey implements storage.Document.
func (e *Extension) DocumentKey() string { return e.Key }

// ExtensionDestination is where the extension is delivered. Which fields are
// set depends on Type.
type ExtensionDestination struct {
	Type           string                   `json:"type"`
	URL            string                   `json:"url,omitempty"`
	Authentication *ExtensionAuthentication `json:"authentication,omitempty"`
	ARN            string                   `json:"arn,omitempty"`
	AccessKey      string                   `json:"accessKey,omitempty"`
	AccessSecret   string                   `json:"accessSecret,omitempty"`
}

// Validate checks that the fields required by the destination type are present.
func (d ExtensionDestination) Validate() error {
	switch d.Type {
	case DestinationHTTP, DestinationGoogleCloudFunction:
		if d.URL == "" {
			return required("destination.url")
		}
		if d.Authentication != nil {
			return oneOf("destination.authentication.type", d.Authentication.Type, "AuthorizationHeader", "AzureFunctions")
		}
	case DestinationAWSLambda:
		switch {
		case d.ARN == "":
			return required("destination.arn")
		case d.AccessKey == "":
			return required("destination.accessKey")
		case d.AccessSecret == "":
			return required("destination.accessSecret")
		}
	case "":
		return required("destination.type")
	default:
		return oneOf("destination.type", d.Type, DestinationHTTP, DestinationAWSLambda, DestinationGoogleCloudFunction)
	}
	return nil
}

// ExtensionAuthentication authenticates HTTP destinations.
type ExtensionAuthentication struct {
	Type        string `json:"type"`
	HeaderValue string `json:"headerValue,omitempty"`
	Key         string `json:"key,omitempty"`
}

// ExtensionTrigger selects the resources and actions the extension fires on.
type ExtensionTrigger struct {
	ResourceTypeID string   `json:"resourceTypeId"`
	Actions        []string `json:"actions"`
	Condition      string   `json:"condition,omitempty"`
}

func validateTriggers(triggers []ExtensionTrigger) error {
	if len(triggers) == 0 {
		return required("triggers")
	}
	for i, t := range triggers {
		field := fmt.Sprintf("triggers[%d]", i)
		if err := oneOf(field+".resourceTypeId", t.ResourceTypeID,
			"cart", "order", "payment", "customer", "quote-request", "staged-quote", "quote", "business-unit", "shopping-list"); err != nil {
			return err
		}
		if t.ResourceTypeID == "" {
			return required(field + ".resourceTypeId")
		}
		if len(t.Actions) == 0 {
			return required(field + ".actions")
		}
		for _, a := range t.Actions {
			if err := oneOf(field+".actions", a, "Create", "Update"); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTimeout(timeout *int) error {
	if timeout != nil && (*timeout < 1 || *timeout > maxExtensionTimeout) {
		return &repository.InvalidInputError{
			Field:   "timeoutInMs",
			Message: fmt.Sprintf("must be between 1 and %d", maxExtensionTimeout),
		}
	}
	return nil
}

// ExtensionDraft is the body of an extension create request.
type ExtensionDraft struct {
	Key         string               `json:"key,omitempty"`
	Destination ExtensionDestination `json:"destination"`
	Triggers    []ExtensionTrigger   `json:"triggers"`
	TimeoutInMs *int                 `json:"timeoutInMs,omitempty"`
}

// Validate implements repository.Validator.
func (d *ExtensionDraft) Validate() error {
	return firstError(
		d.Destination.Validate(),
		validateTriggers(d.Triggers),
		validateTimeout(d.TimeoutInMs),
	)
}

type extensionKind struct {
	schema
}

func (extensionKind) TypeID() repository.TypeID { return repository.TypeExtension }

func (extensionKind) Create(_ repository.CreateContext, d ExtensionDraft, base repository.Base) (*Extension, error) {
	return &Extension{
		Base:        base,
		Key:         d.Key,
		Destination: d.Destination,
		Triggers:    d.Triggers,
		TimeoutInMs: d.TimeoutInMs,
	}, nil
}

// Projections masks destination secrets.
func (extensionKind) Projections() []repository.Projection[*Extension] {
	return []repository.Projection[*Extension]{maskExtensionSecrets}
}

// maskExtensionSecrets hides the AWS secret access key and the HTTP
// authorization header value.
func maskExtensionSecrets(e *Extension) *Extension {
	d := &e.Destination
	switch {
	case d.Type == DestinationAWSLambda && d.AccessSecret != "":
		d.AccessSecret = maskedValue
	case d.Type == DestinationHTTP && d.Authentication != nil &&
		d.Authentication.Type == "AuthorizationHeader" && d.Authentication.HeaderValue != "":
		d.Authentication.HeaderValue = maskedValue
	}
	return e
}

type (
	extensionSetKey struct {
		Key string `json:"key"`
	}
	extensionSetTimeout struct {
		TimeoutInMs *int `json:"timeoutInMs"`
	}
	extensionChangeTriggers struct {
		Triggers []ExtensionTrigger `json:"triggers"`
	}
	extensionChangeDestination struct {
		Destination ExtensionDestination `json:"destination"`
	}
)

func (a *extensionSetTimeout) Validate() error        { return validateTimeout(a.TimeoutInMs) }
func (a *extensionChangeTriggers) Validate() error    { return validateTriggers(a.Triggers) }
func (a *extensionChangeDestination) Validate() error { return a.Destination.Validate() }

func (extensionKind) Actions() repository.ActionTable[*Extension] {
	return repository.ActionTable[*Extension]{
		"setKey": repository.Handle(func(_ repository.ActionContext, e *Extension, a extensionSetKey) error {
			e.Key = a.Key
			return nil
		}),
		"setTimeoutInMs": repository.Handle(func(_ repository.ActionContext, e *Extension, a extensionSetTimeout) error {
			e.TimeoutInMs = a.TimeoutInMs
			return nil
		}),
		"changeTriggers": repository.Handle(func(_ repository.ActionContext, e *Extension, a extensionChangeTriggers) error {
			e.Triggers = a.Triggers
			return nil
		}),
		"changeDestination": repository.Handle(func(_ repository.ActionContext, e *Extension, a extensionChangeDestination) error {
			e.Destination = a.Destination
			return nil
		}),
	}
}
