package observability

import (
	"slices"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/utils"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskPhone masks a phone number for logging, keeping the carrier prefix and last two digits.
func MaskPhone(phone string) string {
	digits := utils.NormalizeDigits(phone)
	if len(digits) < 7 {
		return "***-****-****"
	}
	return digits[:3] + "-****-**" + digits[len(digits)-2:]
}

// MaskSensitiveData masks sensitive values in a map of lead fields. Keys listed in extra
// are masked as well.
func MaskSensitiveData(data map[string]any, extra ...string) map[string]any {
	masked := make(map[string]any, len(data))
	for k, v := range data {
		if _, ok := sensitiveFields[k]; ok || slices.Contains(extra, k) {
			masked[k] = "********"
			continue
		}
		masked[k] = v
	}
	return masked
}

var sensitiveFields = map[string]struct{}{
	"phone":             {},
	"phoneVerification": {},
	"email":             {},
	"code":              {},
}
