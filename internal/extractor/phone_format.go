package extractor

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// FormatPhone renders raw for display according to its type. Indian mobiles
// become "+91 XXXXX XXXXX", Indian toll-free numbers "1800-XXX-XXXX" and
// ten-digit international numbers "(XXX) XXX-XXXX". Everything else goes
// through libphonenumber and falls back to the digits.
func FormatPhone(raw string, kind PhoneType) string {
	digits := digitsOnly(raw)

	if tollFree, ok := indianTollFree(raw, digits); ok {
		return tollFree
	}

	if kind == PhoneIndian {
		national := indianNational(digits)
		if len(national) == 10 && national[0] >= '6' && national[0] <= '9' {
			return "+91 " + national[:5] + " " + national[5:]
		}
		return formatWithRegion(raw, digits, "IN")
	}

	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}
	return formatWithRegion(raw, digits, "")
}

// indianTollFree matches 1800 numbers, with or without +91. A "+1 800"
// number stays North American.
func indianTollFree(raw, digits string) (string, bool) {
	national := digits
	switch {
	case strings.Contains(raw, "+91"):
		national = strings.TrimPrefix(digits, "91")
	case strings.Contains(raw, "+"):
		return "", false
	}
	if len(national) != 11 || !strings.HasPrefix(national, "1800") {
		return "", false
	}
	return "1800-" + national[4:7] + "-" + national[7:], true
}

func indianNational(digits string) string {
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == 11 && digits[0] == '0':
		return digits[1:]
	}
	return digits
}

func formatWithRegion(raw, digits, region string) string {
	trimmed := strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(trimmed, region)
	if err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	}
	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits
	}
	return digits
}
