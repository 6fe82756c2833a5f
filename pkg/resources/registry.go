package resources

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/getmockd/commercemock/internal/storage"
	"github.com/getmockd/commercemock/pkg/repository"
	"github.com/getmockd/commercemock/pkg/validation"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schemas compiles the embedded draft schemas.
func Schemas() (*validation.SchemaSet, error) {
	return validation.LoadSchemas(schemaFS, "schemas/*.json")
}

// Options configures the repositories built by NewRegistry.
type Options struct {
	// Observer is notified of every repository operation
	Observer repository.Observer
	// Clock replaces time.Now
	Clock func() time.Time
	// DefaultLimit and MaxLimit override the query page sizes
	DefaultLimit int
	MaxLimit     int
	// StrictDrafts validates raw drafts against the embedded JSON schemas
	// before decoding them
	StrictDrafts bool
}

func (o Options) repositoryOptions() []repository.Option {
	return []repository.Option{
		repository.WithObserver(o.Observer),
		repository.WithClock(o.Clock),
		repository.WithLimits(o.DefaultLimit, o.MaxLimit),
	}
}

// schema is embedded by kinds to validate raw drafts when strict drafts
// are enabled.
type schema struct {
	validate func([]byte) error
}

// ValidateDraft implements repository.DraftValidator.
func (s schema) ValidateDraft(raw []byte) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(raw)
}

// schemaValidator returns a validator for the named schema reporting
// violations as repository.InvalidInputError. It returns nil when set is nil.
func schemaValidator(set *validation.SchemaSet, name string) func([]byte) error {
	if set == nil {
		return nil
	}
	validate := set.Validator(name)
	if validate == nil {
		return nil
	}
	return func(raw []byte) error {
		err := validate(raw)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			return err
		}
		details := make([]repository.ErrorObject, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			code := repository.CodeInvalidInput
			if fe.Code == validation.ErrCodeInvalidJSON {
				code = repository.CodeInvalidJSONInput
			}
			details = append(details, repository.ErrorObject{Code: code, Message: fe.Error(), Field: fe.Field})
		}
		return &repository.InvalidInputError{
			Message: fmt.Sprintf("Request body does not match the %s schema: %s", name, verr.Error()),
			Details: details,
		}
	}
}

// Paths of the registered kinds below the project key.
const (
	PathCarts         = "carts"
	PathOrders        = "orders"
	PathZones         = "zones"
	PathExtensions    = "extensions"
	PathCartDiscounts = "cart-discounts"
	PathDiscountCodes = "discount-codes"
)

// NewRegistry builds a repository for every kind on top of store.
func NewRegistry(store storage.Store, opts Options) (*repository.Registry, error) {
	var schemas *validation.SchemaSet
	if opts.StrictDrafts {
		var err error
		if schemas, err = Schemas(); err != nil {
			return nil, err
		}
	}
	ro := opts.repositoryOptions()

	carts := repository.New[*Cart, CartDraft](store,
		cartKind{schema{schemaValidator(schemas, "cart-draft")}}, ro...)
	orders := repository.New[*Order, OrderFromCartDraft](store,
		orderKind{schema{schemaValidator(schemas, "order-from-cart-draft")}}, ro...)
	zones := repository.New[*Zone, ZoneDraft](store,
		zoneKind{schema{schemaValidator(schemas, "zone-draft")}}, ro...)
	extensions := repository.New[*Extension, ExtensionDraft](store,
		extensionKind{schema{schemaValidator(schemas, "extension-draft")}}, ro...)
	cartDiscounts := repository.New[*CartDiscount, CartDiscountDraft](store,
		cartDiscountKind{schema{schemaValidator(schemas, "cart-discount-draft")}}, ro...)
	discountCodes := repository.New[*DiscountCode, DiscountCodeDraft](store,
		discountCodeKind{schema{schemaValidator(schemas, "discount-code-draft")}}, ro...)

	return repository.NewRegistry(store,
		repository.Registration{Path: PathCarts, Service: repository.AsService(carts)},
		repository.Registration{Path: PathOrders, Service: &orderService{
			Service:        repository.AsService(orders),
			repo:           orders,
			validateImport: schemaValidator(schemas, "order-import-draft"),
		}},
		repository.Registration{Path: PathZones, Service: repository.AsService(zones)},
		repository.Registration{Path: PathExtensions, Service: repository.AsService(extensions)},
		repository.Registration{Path: PathCartDiscounts, Service: repository.AsService(cartDiscounts)},
		repository.Registration{Path: PathDiscountCodes, Service: repository.AsService(discountCodes)},
	)
}
