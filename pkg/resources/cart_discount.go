package resources

import (
	"fmt"
	"strconv"
	"time"

	"github.com/getmockd/commercemock/pkg/repository"
)

// Stacking modes.
const (
	StackingModeStacking            = "Stacking"
	StackingModeStopAfterThis       = "StopAfterThisDiscount"
	defaultCartDiscountStackingMode = StackingModeStacking
)

// CartDiscountValue is the effect of a cart discount. Which fields are set
// depends on Type.
type CartDiscountValue struct {
	Type                string                `json:"type"`
	Permyriad           *int                  `json:"permyriad,omitempty"`
	Money               []Money               `json:"money,omitempty"`
	Product             *repository.Reference `json:"product,omitempty"`
	VariantID           *int                  `json:"variantId,omitempty"`
	SupplyChannel       *repository.Reference `json:"supplyChannel,omitempty"`
	DistributionChannel *repository.Reference `json:"distributionChannel,omitempty"`
}

// Validate checks the fields required by the value type.
func (v *CartDiscountValue) Validate() error {
	if v == nil || v.Type == "" {
		return required("value.type")
	}
	switch v.Type {
	case "relative":
		if v.Permyriad == nil {
			return required("value.permyriad")
		}
		if *v.Permyriad < 0 || *v.Permyriad > 10000 {
			return &repository.InvalidInputError{Field: "value.permyriad", Message: "must be between 0 and 10000"}
		}
	case "absolute", "fixed":
		if len(v.Money) == 0 {
			return required("value.money")
		}
		for i, m := range v.Money {
			if err := m.Validate(fmt.Sprintf("value.money[%d]", i)); err != nil {
				return err
			}
		}
	case "giftLineItem":
		if v.Product == nil {
			return required("value.product")
		}
		if v.VariantID == nil {
			return required("value.variantId")
		}
	default:
		return oneOf("value.type", v.Type, "relative", "absolute", "fixed", "giftLineItem")
	}
	return nil
}

// CartDiscountTarget selects the parts of a cart a discount applies to.
type CartDiscountTarget struct {
	Type      string `json:"type"`
	Predicate string `json:"predicate,omitempty"`
}

// Validate checks the target type.
func (t *CartDiscountTarget) Validate() error {
	if t == nil {
		return nil
	}
	if t.Type == "" {
		return required("target.type")
	}
	return oneOf("target.type", t.Type, "lineItems", "customLineItems", "shipping", "totalPrice", "multiBuyLineItems", "multiBuyCustomLineItems")
}

// CartDiscount is a discount applied to matching carts.
type CartDiscount struct {
	repository.Base
	Key                  string                 `json:"key,omitempty"`
	Name                 LocalizedString        `json:"name"`
	Description          LocalizedString        `json:"description,omitempty"`
	Value                CartDiscountValue      `json:"value"`
	CartPredicate        string                 `json:"cartPredicate"`
	Target               *CartDiscountTarget    `json:"target,omitempty"`
	SortOrder            string                 `json:"sortOrder"`
	IsActive             bool                   `json:"isActive"`
	ValidFrom            *time.Time             `json:"validFrom,omitempty"`
	ValidUntil           *time.Time             `json:"validUntil,omitempty"`
	RequiresDiscountCode bool                   `json:"requiresDiscountCode"`
	References           []repository.Reference `json:"references"`
	StackingMode         string                 `json:"stackingMode"`
}

// DocumentKey implements storage.Document.
func (c *CartDiscount) DocumentKey() string { return c.Key }

// CartDiscountDraft is the body of a cart discount create request.
type CartDiscountDraft struct {
	Key                  string              `json:"key,omitempty"`
	Name                 LocalizedString     `json:"name"`
	Description          LocalizedString     `json:"description,omitempty"`
	Value                *CartDiscountValue  `json:"value"`
	CartPredicate        string              `json:"cartPredicate"`
	Target               *CartDiscountTarget `json:"target,omitempty"`
	SortOrder            string              `json:"sortOrder"`
	IsActive             *bool               `json:"isActive,omitempty"`
	ValidFrom            *time.Time          `json:"validFrom,omitempty"`
	ValidUntil           *time.Time          `json:"validUntil,omitempty"`
	RequiresDiscountCode bool                `json:"requiresDiscountCode,omitempty"`
	StackingMode         string              `json:"stackingMode,omitempty"`
}

// Validate implements repository.Validator.
func (d *CartDiscountDraft) Validate() error {
	if len(d.Name) == 0 {
		return required("name")
	}
	if d.CartPredicate == "" {
		return required("cartPredicate")
	}
	return firstError(
		d.Name.Validate("name"),
		d.Description.Validate("description"),
		d.Value.Validate(),
		d.Target.Validate(),
		validateSortOrder(d.SortOrder),
		validateValidity(d.ValidFrom, d.ValidUntil),
		oneOf("stackingMode", d.StackingMode, StackingModeStacking, StackingModeStopAfterThis),
	)
}

// validateSortOrder checks that a sort order is a decimal strictly between 0 and 1.
func validateSortOrder(s string) error {
	if s == "" {
		return required("sortOrder")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f >= 1 || s[0] != '0' || s[len(s)-1] == '0' {
		return &repository.InvalidInputError{
			Field:   "sortOrder",
			Message: fmt.Sprintf("'%s' must be a decimal between 0 and 1 without trailing zeros", s),
		}
	}
	return nil
}

// validateValidity checks that the validity window is not inverted.
func validateValidity(from, until *time.Time) error {
	if from != nil && until != nil && !until.After(*from) {
		return &repository.InvalidInputError{Field: "validUntil", Message: "validUntil must be after validFrom"}
	}
	return nil
}

type cartDiscountKind struct {
	schema
}

func (cartDiscountKind) TypeID() repository.TypeID { return repository.TypeCartDiscount }

func (cartDiscountKind) Create(_ repository.CreateContext, d CartDiscountDraft, base repository.Base) (*CartDiscount, error) {
	c := &CartDiscount{
		Base:                 base,
		Key:                  d.Key,
		Name:                 d.Name,
		Description:          d.Description,
		Value:                *d.Value,
		CartPredicate:        d.CartPredicate,
		Target:               d.Target,
		SortOrder:            d.SortOrder,
		ValidFrom:            utcTime(d.ValidFrom),
		ValidUntil:           utcTime(d.ValidUntil),
		RequiresDiscountCode: d.RequiresDiscountCode,
		References:           []repository.Reference{},
		StackingMode:         d.StackingMode,
	}
	if d.IsActive != nil {
		c.IsActive = *d.IsActive
	}
	if c.StackingMode == "" {
		c.StackingMode = defaultCartDiscountStackingMode
	}
	return c, nil
}

// utcTime normalizes an optional timestamp to UTC with millisecond precision.
func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Millisecond)
	return &v
}

type (
	setDescriptionAction struct {
		Description LocalizedString `json:"description"`
	}
	changeNameAction struct {
		Name LocalizedString `json:"name"`
	}
	changeSortOrderAction struct {
		SortOrder string `json:"sortOrder"`
	}
	changeIsActiveAction struct {
		IsActive bool `json:"isActive"`
	}
	changeCartPredicateAction struct {
		CartPredicate string `json:"cartPredicate"`
	}
	changeTargetAction struct {
		Target *CartDiscountTarget `json:"target"`
	}
	changeValueAction struct {
		Value *CartDiscountValue `json:"value"`
	}
	changeRequiresDiscountCodeAction struct {
		RequiresDiscountCode bool `json:"requiresDiscountCode"`
	}
	changeStackingModeAction struct {
		StackingMode string `json:"stackingMode"`
	}
	setValidFromAction struct {
		ValidFrom *time.Time `json:"validFrom"`
	}
	setValidUntilAction struct {
		ValidUntil *time.Time `json:"validUntil"`
	}
)

func (a *setDescriptionAction) Validate() error { return a.Description.Validate("description") }

func (a *changeNameAction) Validate() error {
	if len(a.Name) == 0 {
		return required("name")
	}
	return a.Name.Validate("name")
}

func (a *changeSortOrderAction) Validate() error { return validateSortOrder(a.SortOrder) }

func (a *changeCartPredicateAction) Validate() error {
	if a.CartPredicate == "" {
		return required("cartPredicate")
	}
	return nil
}

func (a *changeTargetAction) Validate() error {
	if a.Target == nil {
		return required("target")
	}
	return a.Target.Validate()
}

func (a *changeValueAction) Validate() error { return a.Value.Validate() }

func (a *changeStackingModeAction) Validate() error {
	if a.StackingMode == "" {
		return required("stackingMode")
	}
	return oneOf("stackingMode", a.StackingMode, StackingModeStacking, StackingModeStopAfterThis)
}

func (cartDiscountKind) Actions() repository.ActionTable[*CartDiscount] {
	return repository.ActionTable[*CartDiscount]{
		"setKey": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a setKeyAction) error {
			c.Key = a.Key
			return nil
		}),
		"setDescription": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a setDescriptionAction) error {
			c.Description = a.Description
			return nil
		}),
		"changeName": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeNameAction) error {
			c.Name = a.Name
			return nil
		}),
		"changeSortOrder": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeSortOrderAction) error {
			c.SortOrder = a.SortOrder
			return nil
		}),
		"changeIsActive": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeIsActiveAction) error {
			c.IsActive = a.IsActive
			return nil
		}),
		"changeCartPredicate": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeCartPredicateAction) error {
			c.CartPredicate = a.CartPredicate
			return nil
		}),
		"changeTarget": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeTargetAction) error {
			c.Target = a.Target
			return nil
		}),
		"changeValue": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeValueAction) error {
			c.Value = *a.Value
			return nil
		}),
		"changeRequiresDiscountCode": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeRequiresDiscountCodeAction) error {
			c.RequiresDiscountCode = a.RequiresDiscountCode
			return nil
		}),
		"changeStackingMode": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a changeStackingModeAction) error {
			c.StackingMode = a.StackingMode
			return nil
		}),
		"setValidFrom": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a setValidFromAction) error {
			if err := validateValidity(a.ValidFrom, c.ValidUntil); err != nil {
				return err
			}
			c.ValidFrom = utcTime(a.ValidFrom)
			return nil
		}),
		"setValidUntil": repository.Handle(func(_ repository.ActionContext, c *CartDiscount, a setValidUntilAction) error {
			if err := validateValidity(c.ValidFrom, a.ValidUntil); err != nil {
				return err
			}
			c.ValidUntil = utcTime(a.ValidUntil)
			return nil
		}),
	}
}
