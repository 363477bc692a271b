package transport

import (
	"fmt"
	"strings"
)

// Endpoints holds the primary and optional secondary base URIs of the
// table service for a storage account.
type Endpoints struct {
	Primary   string
	Secondary string
}

// LocationMode controls which endpoints the engine may target and in what
// order across retry attempts.
type LocationMode int

const (
	// PrimaryOnly targets the primary endpoint on every attempt.
	PrimaryOnly LocationMode = iota

	// SecondaryOnly targets the secondary endpoint on every attempt.
	SecondaryOnly

	// PrimaryThenSecondary targets the primary first and alternates on
	// retries.
	PrimaryThenSecondary
)

// location identifies the endpoint used by one attempt.
type location int

const (
	locationPrimary location = iota
	locationSecondary
)

func (l location) String() string {
	if l == locationSecondary {
		return "secondary"
	}
	return "primary"
}

// forAttempt returns the location and base URI for the given attempt
// number under this mode.
func (e Endpoints) forAttempt(mode LocationMode, attempt int) (location, string, error) {
	loc := locationPrimary
	switch mode {
	case SecondaryOnly:
		loc = locationSecondary
	case PrimaryThenSecondary:
		if attempt%2 == 1 && e.Secondary != "" {
			loc = locationSecondary
		}
	}

	uri := e.Primary
	if loc == locationSecondary {
		uri = e.Secondary
	}
	if uri == "" {
		return loc, "", fmt.Errorf("transport: no %s endpoint configured", loc)
	}
	return loc, strings.TrimSuffix(uri, "/"), nil
}
