package repository

// TypeID identifies a resource kind. The set is closed; every kind the
// platform knows about is listed here even when no repository is registered
// for it.
type TypeID string

// Resource kinds.
const (
	TypeCart                  TypeID = "cart"
	TypeCartDiscount          TypeID = "cart-discount"
	TypeCategory              TypeID = "category"
	TypeChannel               TypeID = "channel"
	TypeCustomer              TypeID = "customer"
	TypeCustomerGroup         TypeID = "customer-group"
	TypeDiscountCode          TypeID = "discount-code"
	TypeExtension             TypeID = "extension"
	TypeInventoryEntry        TypeID = "inventory-entry"
	TypeKeyValueDocument      TypeID = "key-value-document"
	TypeOrder                 TypeID = "order"
	TypeOrderEdit             TypeID = "order-edit"
	TypePayment               TypeID = "payment"
	TypeProduct               TypeID = "product"
	TypeProductDiscount       TypeID = "product-discount"
	TypeProductType           TypeID = "product-type"
	TypeReview                TypeID = "review"
	TypeShippingMethod        TypeID = "shipping-method"
	TypeShoppingList          TypeID = "shopping-list"
	TypeState                 TypeID = "state"
	TypeStore                 TypeID = "store"
	TypeSubscription          TypeID = "subscription"
	TypeTaxCategory           TypeID = "tax-category"
	TypeType                  TypeID = "type"
	TypeZone                  TypeID = "zone"
	TypeCustomerEmailToken    TypeID = "customer-email-token"
	TypeCustomerPasswordToken TypeID = "customer-password-token"
)

var knownTypes = map[TypeID]bool{
	TypeCart: true, TypeCartDiscount: true, TypeCategory: true, TypeChannel: true,
	TypeCustomer: true, TypeCustomerGroup: true, TypeDiscountCode: true, TypeExtension: true,
	TypeInventoryEntry: true, TypeKeyValueDocument: true, TypeOrder: true, TypeOrderEdit: true,
	TypePayment: true, TypeProduct: true, TypeProductDiscount: true, TypeProductType: true,
	TypeReview: true, TypeShippingMethod: true, TypeShoppingList: true, TypeState: true,
	TypeStore: true, TypeSubscription: true, TypeTaxCategory: true, TypeType: true,
	TypeZone: true, TypeCustomerEmailToken: true, TypeCustomerPasswordToken: true,
}

// Valid reports whether t is one of the known resource kinds.
func (t TypeID) Valid() bool {
	return knownTypes[t]
}

func (t TypeID) String() string {
	return string(t)
}

// Reference points at another resource.
type Reference struct {
	TypeID TypeID `json:"typeId"`
	ID     string `json:"id"`
	Key    string `json:"key,omitempty"`
}

// PagedQueryResponse is the response envelope for queries.
type PagedQueryResponse[T any] struct {
	// Limit is the maximum number of results requested
	Limit int `json:"limit"`
	// Offset is the number of matching resources skipped
	Offset int `json:"offset"`
	// Count is the number of results in this page
	Count int `json:"count"`
	// Total is the number of resources matching the predicate
	Total int `json:"total"`
	// Results contains the page of resources
	Results []T `json:"results"`
}
