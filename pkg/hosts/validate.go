package hosts

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const octet = `(25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9]?[0-9])`

var ipv4Pattern = regexp.MustCompile(`^` + octet + `\.` + octet + `\.` + octet + `\.` + octet + `$`)

// IPv4 is a validation rule accepting only dotted-quad IPv4 literals.
var IPv4 = validation.NewStringRuleWithError(IsValidIPv4,
	validation.NewError("validation_is_ipv4", "must be a valid IPv4 address"))

// IsValidIPv4 reports whether candidate is exactly four dot-separated decimal
// octets in the range 0-255. Multi-digit octets may not start with zero.
func IsValidIPv4(candidate string) bool {
	return ipv4Pattern.MatchString(candidate)
}
