package resources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/getmockd/commercemock/pkg/repository"
)

// Order states.
const (
	OrderStateOpen      = "Open"
	OrderStateConfirmed = "Confirmed"
	OrderStateComplete  = "Complete"
	OrderStateCancelled = "Cancelled"
)

var (
	orderStates    = []string{OrderStateOpen, OrderStateConfirmed, OrderStateComplete, OrderStateCancelled}
	paymentStates  = []string{"BalanceDue", "Failed", "Pending", "CreditOwed", "Paid"}
	shipmentStates = []string{"Shipped", "Delivered", "Ready", "Pending", "Delayed", "Partial", "Backorder"}
)

// Order is a placed order, created from a cart or imported.
type Order struct {
	repository.Base
	OrderNumber               string                 `json:"orderNumber,omitempty"`
	CustomerID                string                 `json:"customerId,omitempty"`
	CustomerEmail             string                 `json:"customerEmail,omitempty"`
	AnonymousID               string                 `json:"anonymousId,omitempty"`
	Cart                      *repository.Reference  `json:"cart,omitempty"`
	OrderState                string                 `json:"orderState"`
	PaymentState              string                 `json:"paymentState,omitempty"`
	ShipmentState             string                 `json:"shipmentState,omitempty"`
	TotalPrice                Money                  `json:"totalPrice"`
	TaxedPrice                map[string]any         `json:"taxedPrice,omitempty"`
	TaxMode                   string                 `json:"taxMode,omitempty"`
	TaxRoundingMode           string                 `json:"taxRoundingMode,omitempty"`
	TaxCalculationMode        string                 `json:"taxCalculationMode,omitempty"`
	InventoryMode             string                 `json:"inventoryMode,omitempty"`
	LineItems                 []LineItem             `json:"lineItems"`
	CustomLineItems           []map[string]any       `json:"customLineItems"`
	DiscountCodes             []map[string]any       `json:"discountCodes"`
	SyncInfo                  []map[string]any       `json:"syncInfo"`
	RefusedGifts              []repository.Reference `json:"refusedGifts"`
	Country                   string                 `json:"country,omitempty"`
	Locale                    string                 `json:"locale,omitempty"`
	ShippingAddress           *Address               `json:"shippingAddress,omitempty"`
	BillingAddress            *Address               `json:"billingAddress,omitempty"`
	Origin                    string                 `json:"origin"`
	CompletedAt               *time.Time             `json:"completedAt,omitempty"`
	LastMessageSequenceNumber int                    `json:"lastMessageSequenceNumber"`
}

// OrderFromCartDraft is the body of an order create request.
type OrderFromCartDraft struct {
	Cart          repository.Reference `json:"cart"`
	Version       *int                 `json:"version,omitempty"`
	OrderNumber   string               `json:"orderNumber,omitempty"`
	OrderState    string               `json:"orderState,omitempty"`
	PaymentState  string               `json:"paymentState,omitempty"`
	ShipmentState string               `json:"shipmentState,omitempty"`
}

// Validate implements repository.Validator.
func (d *OrderFromCartDraft) Validate() error {
	if d.Cart.ID == "" && d.Cart.Key == "" {
		return required("cart.id")
	}
	if d.Cart.TypeID != "" && d.Cart.TypeID != repository.TypeCart {
		return oneOf("cart.typeId", string(d.Cart.TypeID), string(repository.TypeCart))
	}
	return firstError(
		oneOf("orderState", d.OrderState, orderStates...),
		oneOf("paymentState", d.PaymentState, paymentStates...),
		oneOf("shipmentState", d.ShipmentState, shipmentStates...),
	)
}

// OrderImportDraft is the body of an order import request. Unlike a cart
// based order it carries its own line items and prices.
type OrderImportDraft struct {
	OrderNumber        string           `json:"orderNumber,omitempty"`
	CustomerID         string           `json:"customerId,omitempty"`
	CustomerEmail      string           `json:"customerEmail,omitempty"`
	LineItems          []LineItem       `json:"lineItems,omitempty"`
	CustomLineItems    []map[string]any `json:"customLineItems,omitempty"`
	TotalPrice         *Money           `json:"totalPrice"`
	TaxedPrice         map[string]any   `json:"taxedPrice,omitempty"`
	ShippingAddress    *Address         `json:"shippingAddress,omitempty"`
	BillingAddress     *Address         `json:"billingAddress,omitempty"`
	Country            string           `json:"country,omitempty"`
	OrderState         string           `json:"orderState,omitempty"`
	PaymentState       string           `json:"paymentState,omitempty"`
	ShipmentState      string           `json:"shipmentState,omitempty"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	InventoryMode      string           `json:"inventoryMode,omitempty"`
	TaxRoundingMode    string           `json:"taxRoundingMode,omitempty"`
	TaxCalculationMode string           `json:"taxCalculationMode,omitempty"`
	Origin             string           `json:"origin,omitempty"`
}

// Validate implements repository.Validator.
func (d *OrderImportDraft) Validate() error {
	if d.TotalPrice == nil {
		return required("totalPrice")
	}
	errs := []error{
		d.TotalPrice.Validate("totalPrice"),
		validateCountry("country", d.Country),
		oneOf("orderState", d.OrderState, orderStates...),
		oneOf("paymentState", d.PaymentState, paymentStates...),
		oneOf("shipmentState", d.ShipmentState, shipmentStates...),
		d.ShippingAddress.Validate("shippingAddress"),
		d.BillingAddress.Validate("billingAddress"),
	}
	for _, li := range d.LineItems {
		if li.ProductID == "" {
			errs = append(errs, required("lineItems.productId"))
		}
		if li.Quantity < 0 {
			errs = append(errs, &repository.InvalidInputError{Field: "lineItems.quantity", Message: "must not be negative"})
		}
	}
	return firstError(errs...)
}

type orderKind struct {
	schema
}

func (orderKind) TypeID() repository.TypeID { return repository.TypeOrder }

// Create copies the cart the draft references into a new order. The cart
// itself is left unchanged.
func (orderKind) Create(ctx repository.CreateContext, d OrderFromCartDraft, base repository.Base) (*Order, error) {
	ref := d.Cart
	ref.TypeID = repository.TypeCart
	res, err := ctx.Resolver.Resolve(ctx.Tenant, ref)
	if err != nil {
		return nil, err
	}
	stored, ok := res.(*Cart)
	if !ok {
		return nil, &repository.InvalidInputError{Field: "cart", Message: "reference does not point to a cart"}
	}
	if d.Version != nil && *d.Version != stored.Version {
		return nil, &repository.ConcurrentModificationError{
			TypeID:          repository.TypeCart,
			ID:              stored.ID,
			ExpectedVersion: *d.Version,
			CurrentVersion:  stored.Version,
		}
	}

	// The resolved cart is shared with the store; work on a copy.
	cart, err := copyCart(stored)
	if err != nil {
		return nil, err
	}

	o := &Order{
		Base:               base,
		OrderNumber:        d.OrderNumber,
		CustomerID:         cart.CustomerID,
		CustomerEmail:      cart.CustomerEmail,
		AnonymousID:        cart.AnonymousID,
		Cart:               &repository.Reference{TypeID: repository.TypeCart, ID: cart.ID},
		OrderState:         d.OrderState,
		PaymentState:       d.PaymentState,
		ShipmentState:      d.ShipmentState,
		TotalPrice:         cart.TotalPrice,
		TaxMode:            cart.TaxMode,
		TaxRoundingMode:    cart.TaxRoundingMode,
		TaxCalculationMode: cart.TaxCalculationMode,
		InventoryMode:      cart.InventoryMode,
		LineItems:          cart.LineItems,
		CustomLineItems:    cart.CustomLineItems,
		DiscountCodes:      cart.DiscountCodes,
		SyncInfo:           []map[string]any{},
		RefusedGifts:       cart.RefusedGifts,
		Country:            cart.Country,
		Locale:             cart.Locale,
		ShippingAddress:    cart.ShippingAddress,
		BillingAddress:     cart.BillingAddress,
		Origin:             cart.Origin,
	}
	if o.OrderState == "" {
		o.OrderState = OrderStateOpen
	}
	return o, nil
}

func copyCart(c *Cart) (*Cart, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	out := &Cart{}
	if err := json.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// importOrder builds an order from an import draft.
func importOrder(d OrderImportDraft, base repository.Base) *Order {
	o := &Order{
		Base:               base,
		OrderNumber:        d.OrderNumber,
		CustomerID:         d.CustomerID,
		CustomerEmail:      d.CustomerEmail,
		OrderState:         d.OrderState,
		PaymentState:       d.PaymentState,
		ShipmentState:      d.ShipmentState,
		TotalPrice:         d.TotalPrice.normalized(),
		TaxedPrice:         d.TaxedPrice,
		TaxRoundingMode:    d.TaxRoundingMode,
		TaxCalculationMode: d.TaxCalculationMode,
		InventoryMode:      d.InventoryMode,
		LineItems:          normalizeLineItems(d.LineItems),
		CustomLineItems:    d.CustomLineItems,
		DiscountCodes:      []map[string]any{},
		SyncInfo:           []map[string]any{},
		RefusedGifts:       []repository.Reference{},
		Country:            d.Country,
		ShippingAddress:    d.ShippingAddress,
		BillingAddress:     d.BillingAddress,
		Origin:             d.Origin,
		CompletedAt:        d.CompletedAt,
	}
	if o.OrderState == "" {
		o.OrderState = OrderStateOpen
	}
	if o.CustomLineItems == nil {
		o.CustomLineItems = []map[string]any{}
	}
	if o.Origin == "" {
		o.Origin = OriginCustomer
	}
	return o
}

type (
	setOrderNumberAction struct {
		OrderNumber string `json:"orderNumber"`
	}
	changeOrderStateAction struct {
		OrderState string `json:"orderState"`
	}
	changePaymentStateAction struct {
		PaymentState string `json:"paymentState"`
	}
	changeShipmentStateAction struct {
		ShipmentState string `json:"shipmentState"`
	}
)

func (a *changeOrderStateAction) Validate() error {
	if a.OrderState == "" {
		return required("orderState")
	}
	return oneOf("orderState", a.OrderState, orderStates...)
}

func (a *changePaymentStateAction) Validate() error {
	return oneOf("paymentState", a.PaymentState, paymentStates...)
}

func (a *changeShipmentStateAction) Validate() error {
	return oneOf("shipmentState", a.ShipmentState, shipmentStates...)
}

func (orderKind) Actions() repository.ActionTable[*Order] {
	return repository.ActionTable[*Order]{
		"setLocale": repository.Handle(func(_ repository.ActionContext, o *Order, a setLocaleAction) error {
			o.Locale = a.Locale
			return nil
		}),
		"setOrderNumber": repository.Handle(func(_ repository.ActionContext, o *Order, a setOrderNumberAction) error {
			o.OrderNumber = a.OrderNumber
			return nil
		}),
		"changeOrderState": repository.Handle(func(ctx repository.ActionContext, o *Order, a changeOrderStateAction) error {
			if a.OrderState == OrderStateComplete && o.OrderState != OrderStateComplete {
				now := ctx.Now.UTC().Truncate(time.Millisecond)
				o.CompletedAt = &now
			}
			o.OrderState = a.OrderState
			return nil
		}),
		"changePaymentState": repository.Handle(func(_ repository.ActionContext, o *Order, a changePaymentStateAction) error {
			o.PaymentState = a.PaymentState
			return nil
		}),
		"changeShipmentState": repository.Handle(func(_ repository.ActionContext, o *Order, a changeShipmentStateAction) error {
			o.ShipmentState = a.ShipmentState
			return nil
		}),
		"setCustomerEmail": repository.Handle(func(_ repository.ActionContext, o *Order, a setCustomerEmailAction) error {
			o.CustomerEmail = a.Email
			return nil
		}),
		"setBillingAddress": repository.Handle(func(_ repository.ActionContext, o *Order, a setAddressAction) error {
			o.BillingAddress = a.Address
			return nil
		}),
		"setShippingAddress": repository.Handle(func(_ repository.ActionContext, o *Order, a setAddressAction) error {
			o.ShippingAddress = a.Address
			return nil
		}),
	}
}

// orderService adds order import to the generic order service.
type orderService struct {
	repository.Service
	repo           *repository.Repository[*Order, OrderFromCartDraft]
	validateImport func([]byte) error
}

// Import implements repository.Importer.
func (s *orderService) Import(ctx context.Context, tenant string, body json.RawMessage) (any, error) {
	if s.validateImport != nil {
		if err := s.validateImport(body); err != nil {
			return nil, err
		}
	}
	draft, err := repository.DecodeJSON[OrderImportDraft](body)
	if err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateFunc(ctx, tenant, func(_ repository.CreateContext, base repository.Base) (*Order, error) {
		return importOrder(draft, base), nil
	})
}
