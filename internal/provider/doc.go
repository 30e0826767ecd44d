// Package provider defines the pieces shared by every upstream API
// client: HTTP status classification, the APIError type, and the
// http.Client construction used for all outbound requests.
//
// Each upstream service lives in its own subpackage (websearch, breach,
// reputation) so their request shapes and response models stay
// independent, while the error taxonomy stays uniform. A caller that
// fans a query out to all three services can inspect any failure with
// errors.As against *APIError regardless of which service produced it.
package provider
