// Package payment enforces the controlled vocabulary of the "requiere pago"
// field: exactly "Sí", exactly "No", or nothing at all.
package payment

const (
	Yes = "Sí"
	No  = "No"
)

// Result is returned by ValidateAndNormalize.
type Result struct {
	IsValid         bool    `json:"isValid"`
	NormalizedValue *string `json:"normalizedValue"`
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case *string:
		return val == nil || *val == ""
	}
	return false
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case *string:
		if val != nil {
			return *val, true
		}
	}
	return "", false
}

// IsValid reports whether v is "Sí", "No", nil or the empty string.
// Matching is case sensitive and any non-string value is invalid.
func IsValid(v any) bool {
	if isEmpty(v) {
		return true
	}
	s, ok := asString(v)
	return ok && (s == Yes || s == No)
}

// Normalize returns the canonical value, or nil for empty and invalid input.
func Normalize(v any) *string {
	s, ok := asString(v)
	if !ok {
		return nil
	}
	switch s {
	case Yes:
		out := Yes
		return &out
	case No:
		out := No
		return &out
	}
	return nil
}

func ValidateAndNormalize(v any) Result {
	if !IsValid(v) {
		return Result{IsValid: false}
	}
	return Result{IsValid: true, NormalizedValue: Normalize(v)}
}

// Label renders the value for exports and badges.
func Label(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
