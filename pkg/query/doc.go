// Package query compiles the query parameters of the mock platform's REST API.
//
// Predicates ("where" parameters) use the platform's syntax, e.g.
//
//	key = "EU" and isActive = true
//	orderState in ("Open", "Confirmed")
//	validUntil is defined
//
// They are rewritten to expr-lang expressions and compiled once per query.
// Evaluation runs against the generic JSON form of a resource, so field names
// are the JSON field names. Nested fields use dot notation (destination.type).
//
// Sort expressions ("sort" parameters) are "<path> [asc|desc]" where the path
// is resolved with JSONPath against the same JSON form.
package query
