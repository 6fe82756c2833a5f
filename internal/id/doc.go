// Package id provides unique identifier generation utilities.
//
// This is the canonical source for resource identifiers across the
// codebase. Identifiers are random UUID v4 values (122 random bits), which
// keeps the collision probability negligible for any realistic number of
// resources held by a single mock process.
package id
