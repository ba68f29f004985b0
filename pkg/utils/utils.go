package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 округляет число до 2 знаков после запятой
func Round2(value float64) float64 {
	return RoundTo(value, 2)
}

// RoundYen округляет сумму до целой иены
func RoundYen(value float64) float64 {
	return RoundTo(value, 0)
}

// RoundTo округляет число до places знаков (половина от нуля)
func RoundTo(value float64, places int32) float64 {
	if !IsFinite(value) {
		return value
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// IsFinite проверяет, является ли число конечным
func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}

// ParseAmount разбирает сумму, допуская разделители тысяч ("88,559,000")
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("некорректная сумма %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// Amount - денежная величина, принимающая в JSON как число, так и строку с разделителями
type Amount float64

// Float64 возвращает значение как float64
func (a Amount) Float64() float64 {
	return float64(a)
}

// UnmarshalJSON принимает 35654400, "35654400" и "35,654,400"
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*a = Amount(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("некорректная сумма %s: %w", raw, err)
	}
	*a = Amount(f)
	return nil
}
