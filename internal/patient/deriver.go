package patient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/intern-assistant/platform/internal/shared/config"
	"github.com/intern-assistant/platform/internal/shared/errors"
)

// idPrefix tags derived identifiers so they are recognizable as
// pseudonyms rather than record keys.
const idPrefix = "PX-"

// Deriver turns a raw national ID into a short pseudonymous patient
// identifier. The derivation is a keyed one-way hash: deterministic for
// a fixed secret, irreversible without it. The raw ID is never stored.
type Deriver struct {
	secret []byte
}

// NewDeriver creates a deriver from the process-wide secret.
func NewDeriver(cfg config.DeriveConfig) *Deriver {
	return &Deriver{secret: []byte(cfg.HMACSecret)}
}

// Derive validates and pseudonymizes a national ID. Non-digit
// characters are stripped first; the cleaned value must be exactly 11
// digits. The identifier is HMAC-SHA256 over the digit string, URL-safe
// base64, lowercased, truncated to 8 characters, prefixed with "PX-".
func (d *Deriver) Derive(tc string) (string, error) {
	digits := stripNonDigits(tc)
	if len(digits) != 11 {
		return "", errors.Validation("TC must be exactly 11 digits", map[string]string{
			"tc": "must be exactly 11 digits",
		})
	}

	mac := hmac.New(sha256.New, d.secret)
	mac.Write([]byte(digits))
	digest := mac.Sum(nil)

	short := strings.ToLower(base64.URLEncoding.EncodeToString(digest))[:8]
	return idPrefix + short, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
