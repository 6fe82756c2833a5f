// Package resources defines the resource kinds served by the mock: carts,
// orders, zones, extensions, cart discounts and discount codes.
//
// Each kind is a repository.Kind: a draft type, a create function and a
// static table of update actions. NewRegistry wires all of them to one
// document store and returns the registry used by the HTTP layer.
package resources
