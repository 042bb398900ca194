// Package dto contains the JSON shapes of the HTTP API.
//
// Field names are camelCase to match the web client. Response types are built
// from domain and use case values with the From* constructors so handlers
// never expose domain structs directly.
package dto
