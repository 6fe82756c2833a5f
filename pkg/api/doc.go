// Package api serves the resource repositories over HTTP.
//
// Every registered kind is exposed below a project key:
//
//	POST   /{projectKey}/{path}              create from a draft
//	GET    /{projectKey}/{path}              query (where, sort, offset, limit)
//	GET    /{projectKey}/{path}/{id}         get by id, or by key with key={key}
//	POST   /{projectKey}/{path}/{id}         apply update actions
//	DELETE /{projectKey}/{path}/{id}         delete, optionally checking ?version=
//	POST   /{projectKey}/orders/import       import a complete order
//
// The /-/ prefix holds the admin endpoints: health, metrics and reset.
// Errors are rendered with httputil.WriteError in the platform error format.
package api
