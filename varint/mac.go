package varint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaylikesbunda/packr/errs"
)

// macPattern matches six hex octets separated uniformly by ':' or '-'.
var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2})([:-])([0-9A-Fa-f]{2})([:-])([0-9A-Fa-f]{2})([:-])([0-9A-Fa-f]{2})([:-])([0-9A-Fa-f]{2})([:-])([0-9A-Fa-f]{2})$`)

// IsMAC reports whether s matches the accepted MAC address pattern.
func IsMAC(s string) bool {
	return macPattern.MatchString(s)
}

// ParseMAC validates and parses a MAC address string into its 6 raw bytes.
// Only strings matching HH[:-]HH[:-]HH[:-]HH[:-]HH[:-]HH (hex octets, uniform
// ':' or '-' separator) are accepted.
func ParseMAC(s string) ([6]byte, error) {
	var out [6]byte

	if !macPattern.MatchString(s) {
		return out, errs.New(errs.InvalidValue, "%q is not a valid MAC address", s)
	}

	cleaned := strings.NewReplacer(":", "", "-", "").Replace(s)
	for i := range out {
		b, err := strconv.ParseUint(cleaned[i*2:i*2+2], 16, 8)
		if err != nil {
			return out, errs.New(errs.InvalidValue, "%q is not a valid MAC address", s)
		}
		out[i] = byte(b)
	}

	return out, nil
}

// FormatMAC renders 6 raw bytes as an uppercase, colon-separated MAC string.
// This is the canonical form PACKR normalizes every MAC to on decode.
func FormatMAC(b [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
