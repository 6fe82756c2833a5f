package resources

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/getmockd/commercemock/pkg/repository"
)

// LocalizedString maps language tags to text.
type LocalizedString map[string]string

// Validate checks that every key is a well-formed language tag.
func (l LocalizedString) Validate(field string) error {
	for tag := range l {
		if _, err := language.Parse(tag); err != nil {
			return &repository.InvalidInputError{Field: field, Message: fmt.Sprintf("'%s' is not a valid language tag", tag)}
		}
	}
	return nil
}

// Money is an amount in the smallest unit of a currency.
type Money struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
}

// NewMoney returns a centPrecision amount with the currency's standard
// number of fraction digits.
func NewMoney(currencyCode string, centAmount int64) Money {
	digits := 2
	if unit, err := currency.ParseISO(currencyCode); err == nil {
		digits, _ = currency.Standard.Rounding(unit)
	}
	return Money{
		Type:           "centPrecision",
		CurrencyCode:   currencyCode,
		CentAmount:     centAmount,
		FractionDigits: digits,
	}
}

// normalized fills the type and fraction digits when a draft omitted them.
func (m Money) normalized() Money {
	if m.Type == "" && m.FractionDigits == 0 {
		return NewMoney(m.CurrencyCode, m.CentAmount)
	}
	if m.Type == "" {
		m.Type = "centPrecision"
	}
	return m
}

// Validate checks the currency code.
func (m Money) Validate(field string) error {
	_, err := parseCurrency(field+".currencyCode", m.CurrencyCode)
	return err
}

// Address is a postal address. All fields are optional except country.
type Address struct {
	ID                   string `json:"id,omitempty"`
	Key                  string `json:"key,omitempty"`
	Title                string `json:"title,omitempty"`
	Salutation           string `json:"salutation,omitempty"`
	FirstName            string `json:"firstName,omitempty"`
	LastName             string `json:"lastName,omitempty"`
	StreetName           string `json:"streetName,omitempty"`
	StreetNumber         string `json:"streetNumber,omitempty"`
	AdditionalStreetInfo string `json:"additionalStreetInfo,omitempty"`
	PostalCode           string `json:"postalCode,omitempty"`
	City                 string `json:"city,omitempty"`
	Region               string `json:"region,omitempty"`
	State                string `json:"state,omitempty"`
	Country              string `json:"country"`
	Company              string `json:"company,omitempty"`
	Department           string `json:"department,omitempty"`
	Building             string `json:"building,omitempty"`
	Apartment            string `json:"apartment,omitempty"`
	POBox                string `json:"pOBox,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Mobile               string `json:"mobile,omitempty"`
	Email                string `json:"email,omitempty"`
}

// Validate checks the country code of a non-nil address.
func (a *Address) Validate(field string) error {
	if a == nil {
		return nil
	}
	return validateCountry(field+".country", a.Country)
}

// Location is a country, optionally narrowed to a state.
type Location struct {
	Country string `json:"country"`
	State   string `json:"state,omitempty"`
}

// Validate checks the country code.
func (l Location) Validate() error {
	return validateCountry("location.country", l.Country)
}

// parseCurrency validates an ISO 4217 code and returns it in canonical form.
func parseCurrency(field, code string) (string, error) {
	if code == "" {
		return "", &repository.InvalidInputError{Field: field, Message: "currency code is required"}
	}
	unit, err := currency.ParseISO(code)
	if err != nil || unit.String() != code {
		return "", &repository.InvalidInputError{Field: field, Message: fmt.Sprintf("'%s' is not a valid ISO 4217 currency code", code)}
	}
	return unit.String(), nil
}

// validateLocale checks that tag is a BCP 47 language tag.
func validateLocale(field, tag string) error {
	if tag == "" {
		return nil
	}
	if _, err := language.Parse(tag); err != nil {
		return &repository.InvalidInputError{Field: field, Message: fmt.Sprintf("'%s' is not a valid locale", tag)}
	}
	return nil
}

// validateCountry checks that code is a two-letter ISO 3166-1 country code.
func validateCountry(field, code string) error {
	if code == "" {
		return nil
	}
	if len(code) != 2 || strings.ToUpper(code) != code {
		return &repository.InvalidInputError{Field: field, Message: fmt.Sprintf("'%s' is not a valid country code", code)}
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return &repository.InvalidInputError{Field: field, Message: fmt.Sprintf("'%s' is not a valid country code", code)}
	}
	return nil
}

// oneOf checks that value is empty or one of allowed.
func oneOf(field, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &repository.InvalidInputError{
		Field:   field,
		Message: fmt.Sprintf("'%s' is not one of %s", value, strings.Join(allowed, ", ")),
	}
}

// required reports a missing field.
func required(field string) error {
	return &repository.InvalidInputError{Field: field, Message: "field is required"}
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
