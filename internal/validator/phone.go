package validator

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone parses raw as an international number and returns its E.164
// form. Numbers without a leading + need a default region.
func NormalizePhone(raw, region string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
