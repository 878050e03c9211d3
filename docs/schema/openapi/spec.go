// Package openapi embeds the contact book OpenAPI document for runtime
// distribution.
package openapi

import _ "embed"

// ContactBookSpec contains the OpenAPI description of the JSON endpoints.
//
//go:embed contactbook.yaml
var ContactBookSpec []byte

// Spec returns a copy of the embedded OpenAPI YAML.
func Spec() []byte {
	return append([]byte(nil), ContactBookSpec...)
}
