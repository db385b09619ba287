package vrchat

import (
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

// GenerateTOTPCode computes the standard 6-digit, 30-second-window TOTP code
// for the given base32 secret at the given time. Secrets are distributed with
// embedded spaces for readability; all whitespace is stripped before decoding.
func GenerateTOTPCode(secret string, at time.Time) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(secret), ""))
	return totp.GenerateCode(normalized, at)
}
