package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal принимает "1 234,5", "1,234.5", "1234.5", "$50".
// Запятая без точки считается десятичным разделителем.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "$€₹")
	s = strings.NewReplacer(" ", "", " ", "", "_", "").Replace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else if strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	return v, nil
}

var maxShareCount = decimal.NewFromInt(1 << 62)

// ParseShareCount accepts whole numbers only ("45", "45.0").
func ParseShareCount(raw string) (int64, error) {
	v, err := ParseDecimal(raw)
	if err != nil {
		return 0, err
	}
	// модуль проверяем до IsInteger и IntPart: "-1e30" не должен переполниться
	if e := v.Exponent(); e > 18 || e < -18 || v.Abs().GreaterThan(maxShareCount) {
		return 0, fmt.Errorf("%q is out of range", raw)
	}
	if !v.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	if v.Sign() < 0 {
		return 0, fmt.Errorf("%q must not be negative", raw)
	}
	return v.IntPart(), nil
}
