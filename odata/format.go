// Package odata implements the JSON payload encoding used by the table
// service: payload format negotiation, EDM-typed property values and the
// single-entity codec.
package odata

import "fmt"

// Format selects how much OData metadata the service includes in payloads.
type Format string

const (
	// FormatNoMetadata omits all OData metadata from responses.
	FormatNoMetadata Format = "nometadata"

	// FormatMinimalMetadata includes only the metadata needed to resolve
	// property types. This is the default.
	FormatMinimalMetadata Format = "minimalmetadata"

	// FormatFullMetadata includes edit links, ids and type annotations for
	// every row.
	FormatFullMetadata Format = "fullmetadata"
)

// ContentType is the request body media type for all JSON formats.
const ContentType = "application/json"

// Accept returns the Accept header value requesting this format.
func (f Format) Accept() string {
	return fmt.Sprintf("application/json;odata=%s", f)
}

// Valid reports whether f is one of the defined formats.
func (f Format) Valid() bool {
	switch f {
	case FormatNoMetadata, FormatMinimalMetadata, FormatFullMetadata:
		return true
	}
	return false
}
