package resources

import (
	"fmt"
	"time"

	"github.com/getmockd/commercemock/pkg/repository"
)

// DiscountCode activates cart discounts that require a code.
type DiscountCode struct {
	repository.Base
	Code                       string                 `json:"code"`
	Name                       LocalizedString        `json:"name,omitempty"`
	Description                LocalizedString        `json:"description,omitempty"`
	CartDiscounts              []repository.Reference `json:"cartDiscounts"`
	CartPredicate              string                 `json:"cartPredicate,omitempty"`
	IsActive                   bool                   `json:"isActive"`
	References                 []repository.Reference `json:"references"`
	MaxApplications            *int                   `json:"maxApplications,omitempty"`
	MaxApplicationsPerCustomer *int                   `json:"maxApplicationsPerCustomer,omitempty"`
	Groups                     []string               `json:"groups"`
	ValidFrom                  *time.Time             `json:"validFrom,omitempty"`
	ValidUntil                 *time.Time             `json:"validUntil,omitempty"`
	ApplicationVersion         int                    `json:"applicationVersion"`
}

// DocumentKey implements storage.Document. The code is the unique
// secondary identifier of a discount code.
func (c *DiscountCode) DocumentKey() string { return c.Code }

// DiscountCodeDraft is the body of a discount code create request.
type DiscountCodeDraft struct {
	Code                       string                 `json:"code"`
	Name                       LocalizedString        `json:"name,omitempty"`
	Description                LocalizedString        `json:"description,omitempty"`
	CartDiscounts              []repository.Reference `json:"cartDiscounts"`
	CartPredicate              string                 `json:"cartPredicate,omitempty"`
	IsActive                   *bool                  `json:"isActive,omitempty"`
	MaxApplications            *int                   `json:"maxApplications,omitempty"`
	MaxApplicationsPerCustomer *int                   `json:"maxApplicationsPerCustomer,omitempty"`
	Groups                     []string               `json:"groups,omitempty"`
	ValidFrom                  *time.Time             `json:"validFrom,omitempty"`
	ValidUntil                 *time.Time             `json:"validUntil,omitempty"`
}

// Validate implements repository.Validator.
func (d *DiscountCodeDraft) Validate() error {
	if d.Code == "" {
		return required("code")
	}
	return firstError(
		validateCartDiscountRefs(d.CartDiscounts),
		d.Name.Validate("name"),
		d.Description.Validate("description"),
		validateMaxApplications("maxApplications", d.MaxApplications),
		validateMaxApplications("maxApplicationsPerCustomer", d.MaxApplicationsPerCustomer),
		validateValidity(d.ValidFrom, d.ValidUntil),
	)
}

func validateCartDiscountRefs(refs []repository.Reference) error {
	if len(refs) == 0 {
		return required("cartDiscounts")
	}
	for i, ref := range refs {
		field := fmt.Sprintf("cartDiscounts[%d]", i)
		if ref.TypeID != "" && ref.TypeID != repository.TypeCartDiscount {
			return oneOf(field+".typeId", string(ref.TypeID), string(repository.TypeCartDiscount))
		}
		if ref.ID == "" && ref.Key == "" {
			return required(field + ".id")
		}
	}
	return nil
}

func validateMaxApplications(field string, v *int) error {
	if v != nil && *v < 1 {
		return &repository.InvalidInputError{Field: field, Message: "must be a positive integer"}
	}
	return nil
}

type discountCodeKind struct {
	schema
}

func (discountCodeKind) TypeID() repository.TypeID { return repository.TypeDiscountCode }

// KeyField implements repository.KeyField.
func (discountCodeKind) KeyField() string { return "code" }

// Create resolves every referenced cart discount, so references always
// carry ids even when the draft used keys.
func (discountCodeKind) Create(ctx repository.CreateContext, d DiscountCodeDraft, base repository.Base) (*DiscountCode, error) {
	refs := make([]repository.Reference, 0, len(d.CartDiscounts))
	for _, ref := range d.CartDiscounts {
		ref.TypeID = repository.TypeCartDiscount
		res, err := ctx.Resolver.Resolve(ctx.Tenant, ref)
		if err != nil {
			return nil, err
		}
		refs = append(refs, repository.Reference{TypeID: repository.TypeCartDiscount, ID: res.DocumentID()})
	}

	groups := d.Groups
	if groups == nil {
		groups = []string{}
	}

	c := &DiscountCode{
		Base:                       base,
		Code:                       d.Code,
		Name:                       d.Name,
		Description:                d.Description,
		CartDiscounts:              refs,
		CartPredicate:              d.CartPredicate,
		IsActive:                   true,
		References:                 []repository.Reference{},
		MaxApplications:            d.MaxApplications,
		MaxApplicationsPerCustomer: d.MaxApplicationsPerCustomer,
		Groups:                     groups,
		ValidFrom:                  utcTime(d.ValidFrom),
		ValidUntil:                 utcTime(d.ValidUntil),
		ApplicationVersion:         1,
	}
	if d.IsActive != nil {
		c.IsActive = *d.IsActive
	}
	return c, nil
}

type (
	setNameAction struct {
		Name LocalizedString `json:"name"`
	}
	setCartPredicateAction struct {
		CartPredicate string `json:"cartPredicate"`
	}
	setMaxApplicationsAction struct {
		MaxApplications *int `json:"maxApplications"`
	}
	setMaxApplicationsPerCustomerAction struct {
		MaxApplicationsPerCustomer *int `json:"maxApplicationsPerCustomer"`
	}
	changeGroupsAction struct {
		Groups []string `json:"groups"`
	}
	changeCartDiscountsAction struct {
		CartDiscounts []repository.Reference `json:"cartDiscounts"`
	}
)

func (a *setNameAction) Validate() error { return a.Name.Validate("name") }

func (a *setMaxApplicationsAction) Validate() error {
	return validateMaxApplications("maxApplications", a.MaxApplications)
}

func (a *setMaxApplicationsPerCustomerAction) Validate() error {
	return validateMaxApplications("maxApplicationsPerCustomer", a.MaxApplicationsPerCustomer)
}

func (a *changeCartDiscountsAction) Validate() error {
	for _, ref := range a.CartDiscounts {
		if ref.ID == "" {
			return required("cartDiscounts.id")
		}
	}
	return validateCartDiscountRefs(a.CartDiscounts)
}

func (discountCodeKind) Actions() repository.ActionTable[*DiscountCode] {
	return repository.ActionTable[*DiscountCode]{
		"setName": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a setNameAction) error {
			c.Name = a.Name
			return nil
		}),
		"setDescription": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a setDescriptionAction) error {
			c.Description = a.Description
			return nil
		}),
		"changeIsActive": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a changeIsActiveAction) error {
			c.IsActive = a.IsActive
			return nil
		}),
		"setCartPredicate": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a setCartPredicateAction) error {
			c.CartPredicate = a.CartPredicate
			return nil
		}),
		"setMaxApplications": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a setMaxApplicationsAction) error {
			c.MaxApplications = a.MaxApplications
			return nil
		}),
		"setMaxApplicationsPerCustomer": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a setMaxApplicationsPerCustomerAction) error {
			c.MaxApplicationsPerCustomer = a.MaxApplicationsPerCustomer
			return nil
		}),
		"changeGroups": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a changeGroupsAction) error {
			c.Groups = a.Groups
			if c.Groups == nil {
				c.Groups = []string{}
			}
			return nil
		}),
		"setValidFrom": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a setValidFromAction) error {
			if err := validateValidity(a.ValidFrom, c.ValidUntil); err != nil {
				return err
			}
			c.ValidFrom = utcTime(a.ValidFrom)
			return nil
		}),
		"setValidUntil": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a setValidUntilAction) error {
			if err := validateValidity(c.ValidFrom, a.ValidUntil); err != nil {
				return err
			}
			c.ValidUntil = utcTime(a.ValidUntil)
			return nil
		}),
		"changeCartDiscounts": repository.Handle(func(_ repository.ActionContext, c *DiscountCode, a changeCartDiscountsAction) error {
			refs := make([]repository.Reference, len(a.CartDiscounts))
			for i, ref := range a.CartDiscounts {
				refs[i] = repository.Reference{TypeID: repository.TypeCartDiscount, ID: ref.ID}
			}
			c.CartDiscounts = refs
			return nil
		}),
	}
}
