package coord

import (
	"fmt"
	"strconv"
	"strings"
)

// UTMCode returns the WGS84 / UTM EPSG code for a zone and hemisphere,
// e.g. UTMCode(33, false) = "EPSG:32633".
func UTMCode(zone int, south bool) string {
	if south {
		return fmt.Sprintf("EPSG:%d", 32700+zone)
	}
	return fmt.Sprintf("EPSG:%d", 32600+zone)
}

// parseUTMCode recognizes WGS84 / UTM (EPSG:326zz, EPSG:327zz) and
// ETRS89 / UTM (EPSG:25828-25838) codes.
func parseUTMCode(code string) (zone int, south bool, ellps string, ok bool) {
	rest, found := strings.CutPrefix(code, "EPSG:")
	if !found {
		return 0, false, "", false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false, "", false
	}
	switch {
	case n > 32600 && n <= 32660:
		return n - 32600, false, "WGS84", true
	case n > 32700 && n <= 32760:
		return n - 32700, true, "WGS84", true
	case n >= 25828 && n <= 25838:
		return n - 25800, false, "GRS80", true
	}
	return 0, false, "", false
}

func utmDefinition(zone int, south bool, ellps string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "+proj=utm +zone=%d", zone)
	if south {
		b.WriteString(" +south")
	}
	if ellps == "WGS84" {
		b.WriteString(" +datum=WGS84")
	}
	fmt.Fprintf(&b, " +ellps=%s +units=m +no_defs", ellps)
	return b.String()
}
