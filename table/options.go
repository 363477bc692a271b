package table

import (
	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/transport"
)

// RequestOptions tunes one Execute call. Unset fields fall back to the
// client defaults.
type RequestOptions struct {
	// PayloadFormat selects the JSON metadata level for request and
	// response payloads.
	PayloadFormat odata.Format

	// RetryPolicy governs transient-fault retries for this operation.
	RetryPolicy transport.RetryPolicy

	// LocationMode selects the endpoints read operations may target.
	// Writes always go to the primary. Nil means the client default, so an
	// explicit PrimaryOnly can override a broader default.
	LocationMode *transport.LocationMode
}

// Location returns mode as a RequestOptions.LocationMode value.
func Location(mode transport.LocationMode) *transport.LocationMode {
	return &mode
}

// resolveOptions layers opts over the client defaults and fills the
// remaining gaps with package defaults. The resolved options always carry
// a non-nil LocationMode.
func resolveOptions(opts *RequestOptions, defaults RequestOptions) RequestOptions {
	out := defaults
	if opts != nil {
		if opts.PayloadFormat != "" {
			out.PayloadFormat = opts.PayloadFormat
		}
		if opts.RetryPolicy != nil {
			out.RetryPolicy = opts.RetryPolicy
		}
		if opts.LocationMode != nil {
			out.LocationMode = opts.LocationMode
		}
	}
	if out.PayloadFormat == "" {
		out.PayloadFormat = odata.FormatMinimalMetadata
	}
	if out.RetryPolicy == nil {
		out.RetryPolicy = transport.DefaultRetry()
	}
	if out.LocationMode == nil {
		out.LocationMode = Location(transport.PrimaryOnly)
	}
	return out
}
