package crs

import "fmt"

// Reserved identifiers for the two choices that carry no mapped code.
const (
	IdentifierWGS84 = "wgs84"
	IdentifierUTM   = "utm"
)

// Kind tells which tier produced a Choice.
type Kind int

const (
	KindWGS84 Kind = iota
	KindCountry
	KindContinent
	KindUTM
)

func (k Kind) String() string {
	switch k {
	case KindWGS84:
		return "wgs84"
	case KindCountry:
		return "country"
	case KindContinent:
		return "continent"
	case KindUTM:
		return "utm"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Choice is the CRS picked for a point set. Country and continent choices
// carry the mapped code; a UTM choice carries the continent that qualified
// it, and its zone is derived from the points at reprojection time.
// Keeping the kind separate from the code means a mapping value that
// happens to read "utm" or "wgs84" is still treated as a plain code.
type Choice struct {
	Kind   Kind
	Region string
	Code   string
}

// Identifier returns "wgs84", "utm", or the mapped CRS code.
func (c Choice) Identifier() string {
	switch c.Kind {
	case KindWGS84:
		return IdentifierWGS84
	case KindUTM:
		return IdentifierUTM
	default:
		return c.Code
	}
}

func (c Choice) String() string {
	if c.Region == "" {
		return c.Identifier()
	}
	return fmt.Sprintf("%s (%s)", c.Identifier(), c.Region)
}
