package money

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned for non-positive or non-finite amounts.
var ErrInvalidAmount = errors.New("invalid_amount")

// Minor-unit exponents per ISO 4217. Currencies missing from the table
// use two decimal places.
var currencyExponents = map[string]int{
	"BHD": 3,
	"INR": 2,
	"JPY": 0,
	"KRW": 0,
	"KWD": 3,
	"OMR": 3,
	"VND": 0,
}

const defaultExponent = 2

// Exponent returns the minor-unit exponent for a currency code.
func Exponent(currency string) int {
	if exp, ok := currencyExponents[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return exp
	}
	return defaultExponent
}

// ToMinorUnits converts a major-unit amount to the processor's integer
// minor-unit representation, rounding half away from zero.
//
// Rounding happens on the amount's decimal digits, not on the scaled
// float64: 1.005*100 is 100.4999... in binary and would otherwise lose a
// minor unit.
func ToMinorUnits(amount float64, currency string) (int64, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}

	exp := Exponent(currency)
	text := strconv.FormatFloat(amount, 'f', -1, 64)
	intPart, fracPart := text, ""
	if idx := strings.IndexByte(text, '.'); idx >= 0 {
		intPart, fracPart = text[:idx], text[idx+1:]
	}
	for len(fracPart) < exp {
		fracPart += "0"
	}

	minor, err := strconv.ParseInt(intPart+fracPart[:exp], 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if rest := fracPart[exp:]; rest != "" && rest[0] >= '5' {
		minor++
	}
	return minor, nil
}

// ToMajorUnits converts an integer minor-unit amount back to major units.
func ToMajorUnits(minor int64, currency string) float64 {
	scale := math.Pow10(Exponent(currency))
	return float64(minor) / scale
}

// MissingFieldsError lists the required fields absent from a request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Field pairs a request field name with its bound value for validation.
type Field struct {
	Name  string
	Value any
}

// RequireFields returns a MissingFieldsError naming every field whose value
// is nil, an empty string, a zero amount, or a nil pointer. Field order is
// preserved so error messages are deterministic.
func RequireFields(fields ...Field) error {
	var missing []string
	for _, field := range fields {
		if isMissing(field.Value) {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

func isMissing(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case float64:
		return typed == 0
	case int64:
		return typed == 0
	case int:
		return typed == 0
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice {
		return rv.IsNil()
	}
	return false
}
