package resources

import (
	"time"

	"github.com/getmockd/commercemock/internal/id"
	"github.com/getmockd/commercemock/pkg/repository"
)

// Cart states and modes.
const (
	CartStateActive  = "Active"
	CartStateMerged  = "Merged"
	CartStateOrdered = "Ordered"

	TaxModePlatform = "Platform"
	InventoryNone   = "None"
	OriginCustomer  = "Customer"
)

// LineItem is a product line of a cart or order. Product details that the
// mock does not interpret are kept as raw JSON objects.
type LineItem struct {
	ID                         string                `json:"id"`
	ProductID                  string                `json:"productId"`
	ProductKey                 string                `json:"productKey,omitempty"`
	Name                       LocalizedString       `json:"name"`
	ProductType                *repository.Reference `json:"productType,omitempty"`
	Variant                    map[string]any        `json:"variant,omitempty"`
	Price                      map[string]any        `json:"price,omitempty"`
	Quantity                   int                   `json:"quantity"`
	TotalPrice                 Money                 `json:"totalPrice"`
	TaxRate                    map[string]any        `json:"taxRate,omitempty"`
	TaxedPrice                 map[string]any        `json:"taxedPrice,omitempty"`
	DiscountedPricePerQuantity []any                 `json:"discountedPricePerQuantity"`
	State                      []any                 `json:"state"`
	PriceMode                  string                `json:"priceMode,omitempty"`
	LineItemMode               string                `json:"lineItemMode,omitempty"`
	AddedAt                    *time.Time            `json:"addedAt,omitempty"`
	LastModifiedAt             *time.Time            `json:"lastModifiedAt,omitempty"`
}

// normalizeLineItems fills ids and empty collections of imported line items.
func normalizeLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, li := range items {
		if li.ID == "" {
			li.ID = id.UUID()
		}
		if li.DiscountedPricePerQuantity == nil {
			li.DiscountedPricePerQuantity = []any{}
		}
		if li.State == nil {
			li.State = []any{}
		}
		if li.PriceMode == "" {
			li.PriceMode = TaxModePlatform
		}
		if li.LineItemMode == "" {
			li.LineItemMode = "Standard"
		}
		li.TotalPrice = li.TotalPrice.normalized()
		out[i] = li
	}
	return out
}

// Cart is a shopping cart.
type Cart struct {
	repository.Base
	Key                string                 `json:"key,omitempty"`
	CustomerID         string                 `json:"customerId,omitempty"`
	CustomerEmail      string                 `json:"customerEmail,omitempty"`
	AnonymousID        string                 `json:"anonymousId,omitempty"`
	CartState          string                 `json:"cartState"`
	TotalPrice         Money                  `json:"totalPrice"`
	TaxMode            string                 `json:"taxMode"`
	TaxRoundingMode    string                 `json:"taxRoundingMode"`
	TaxCalculationMode string                 `json:"taxCalculationMode"`
	InventoryMode      string                 `json:"inventoryMode"`
	LineItems          []LineItem             `json:"lineItems"`
	CustomLineItems    []map[string]any       `json:"customLineItems"`
	DiscountCodes      []map[string]any       `json:"discountCodes"`
	RefusedGifts       []repository.Reference `json:"refusedGifts"`
	Country            string                 `json:"country,omitempty"`
	Locale             string                 `json:"locale,omitempty"`
	ShippingAddress    *Address               `json:"shippingAddress,omitempty"`
	BillingAddress     *Address               `json:"billingAddress,omitempty"`
	Origin             string                 `json:"origin"`
}

// DocumentKey implements storage.Document.
func (c *Cart) DocumentKey() string { return c.Key }

// CartDraft is the body of a cart create request.
type CartDraft struct {
	Currency        string   `json:"currency"`
	Key             string   `json:"key,omitempty"`
	CustomerID      string   `json:"customerId,omitempty"`
	CustomerEmail   string   `json:"customerEmail,omitempty"`
	AnonymousID     string   `json:"anonymousId,omitempty"`
	Country         string   `json:"country,omitempty"`
	Locale          string   `json:"locale,omitempty"`
	InventoryMode   string   `json:"inventoryMode,omitempty"`
	TaxMode         string   `json:"taxMode,omitempty"`
	Origin          string   `json:"origin,omitempty"`
	ShippingAddress *Address `json:"shippingAddress,omitempty"`
	BillingAddress  *Address `json:"billingAddress,omitempty"`
}

// Validate implements repository.Validator.
func (d *CartDraft) Validate() error {
	_, err := parseCurrency("currency", d.Currency)
	return firstError(
		err,
		validateCountry("country", d.Country),
		validateLocale("locale", d.Locale),
		oneOf("inventoryMode", d.InventoryMode, "None", "TrackOnly", "ReserveOnOrder"),
		oneOf("taxMode", d.TaxMode, "Platform", "External", "ExternalAmount", "Disabled"),
		oneOf("origin", d.Origin, "Customer", "Merchant", "Quote"),
		d.ShippingAddress.Validate("shippingAddress"),
		d.BillingAddress.Validate("billingAddress"),
	)
}

type cartKind struct {
	schema
}

func (cartKind) TypeID() repository.TypeID { return repository.TypeCart }

func (cartKind) Create(_ repository.CreateContext, d CartDraft, base repository.Base) (*Cart, error) {
	c := &Cart{
		Base:               base,
		Key:                d.Key,
		CustomerID:         d.CustomerID,
		CustomerEmail:      d.CustomerEmail,
		AnonymousID:        d.AnonymousID,
		CartState:          CartStateActive,
		TotalPrice:         NewMoney(d.Currency, 0),
		TaxMode:            d.TaxMode,
		TaxRoundingMode:    "HalfEven",
		TaxCalculationMode: "LineItemLevel",
		InventoryMode:      d.InventoryMode,
		LineItems:          []LineItem{},
		CustomLineItems:    []map[string]any{},
		DiscountCodes:      []map[string]any{},
		RefusedGifts:       []repository.Reference{},
		Country:            d.Country,
		Locale:             d.Locale,
		ShippingAddress:    d.ShippingAddress,
		BillingAddress:     d.BillingAddress,
		Origin:             d.Origin,
	}
	if c.TaxMode == "" {
		c.TaxMode = TaxModePlatform
	}
	if c.InventoryMode == "" {
		c.InventoryMode = InventoryNone
	}
	if c.Origin == "" {
		c.Origin = OriginCustomer
	}
	return c, nil
}

type (
	setKeyAction struct {
		Key string `json:"key"`
	}
	setCustomerEmailAction struct {
		Email string `json:"email"`
	}
	setCustomerIDAction struct {
		CustomerID string `json:"customerId"`
	}
	setAnonymousIDAction struct {
		AnonymousID string `json:"anonymousId"`
	}
	setCountryAction struct {
		Country string `json:"country"`
	}
	setLocaleAction struct {
		Locale string `json:"locale"`
	}
	setAddressAction struct {
		Address *Address `json:"address"`
	}
	recalculateAction struct {
		UpdateProductData bool `json:"updateProductData"`
	}
)

func (a *setCountryAction) Validate() error { return validateCountry("country", a.Country) }
func (a *setLocaleAction) Validate() error  { return validateLocale("locale", a.Locale) }
func (a *setAddressAction) Validate() error { return a.Address.Validate("address") }

func (cartKind) Actions() repository.ActionTable[*Cart] {
	return repository.ActionTable[*Cart]{
		"setKey": repository.Handle(func(_ repository.ActionContext, c *Cart, a setKeyAction) error {
			c.Key = a.Key
			return nil
		}),
		"setCustomerEmail": repository.Handle(func(_ repository.ActionContext, c *Cart, a setCustomerEmailAction) error {
			c.CustomerEmail = a.Email
			return nil
		}),
		"setCustomerId": repository.Handle(func(_ repository.ActionContext, c *Cart, a setCustomerIDAction) error {
			c.CustomerID = a.CustomerID
			return nil
		}),
		"setAnonymousId": repository.Handle(func(_ repository.ActionContext, c *Cart, a setAnonymousIDAction) error {
			c.AnonymousID = a.AnonymousID
			return nil
		}),
		"setCountry": repository.Handle(func(_ repository.ActionContext, c *Cart, a setCountryAction) error {
			c.Country = a.Country
			return nil
		}),
		"setLocale": repository.Handle(func(_ repository.ActionContext, c *Cart, a setLocaleAction) error {
			c.Locale = a.Locale
			return nil
		}),
		"setShippingAddress": repository.Handle(func(_ repository.ActionContext, c *Cart, a setAddressAction) error {
			c.ShippingAddress = a.Address
			return nil
		}),
		"setBillingAddress": repository.Handle(func(_ repository.ActionContext, c *Cart, a setAddressAction) error {
			c.BillingAddress = a.Address
			return nil
		}),
		// Prices are not computed by the mock, so there is nothing to recalculate.
		"recalculate": repository.Handle(func(_ repository.ActionContext, c *Cart, _ recalculateAction) error {
			return nil
		}),
	}
}
