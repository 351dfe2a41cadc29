// Copyright (c) 2013, 2014 The btcsuite developers
// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainutil provides the monetary (Amount), addressing (Address,
// WIF) and classification (IsDust) helpers that sit above the raw wire
// encoding.
package chainutil

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AmountUnit describes a method of converting an Amount to something other
// than the base satoshi unit. Its value is the power-of-ten exponent
// relating that unit to one whole bitcoin.
type AmountUnit int

// These constants define the recognized units for formatting an Amount.
const (
	AmountMegaBTC  AmountUnit = 6
	AmountKiloBTC  AmountUnit = 3
	AmountBTC      AmountUnit = 0
	AmountMilliBTC AmountUnit = -3
	AmountMicroBTC AmountUnit = -6
	AmountSatoshi  AmountUnit = -8
)

// String returns the unit's SI-style label, or "Satoshi" for the base unit.
func (u AmountUnit) String() string {
	switch u {
	case AmountMegaBTC:
		return "MBTC"
	case AmountKiloBTC:
		return "kBTC"
	case AmountBTC:
		return "BTC"
	case AmountMilliBTC:
		return "mBTC"
	case AmountMicroBTC:
		return "µBTC"
	case AmountSatoshi:
		return "Satoshi"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " BTC"
	}
}

// Amount represents a quantity of satoshis, the smallest indivisible unit
// of value in this system (§GLOSSARY).
type Amount int64

// round converts a float64, which may not be exactly representable as an
// integer, to the nearest Amount.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating-point quantity of whole
// bitcoin. It errors if f is NaN or infinite.
func NewAmount(f float64) (Amount, error) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 1), math.IsInf(f, -1):
		return 0, errors.New("invalid amount")
	}
	return round(f * SatoshiPerBitcoin), nil
}

// ToUnit converts a to a floating-point quantity of u.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToBTC is equivalent to ToUnit(AmountBTC).
func (a Amount) ToBTC() float64 {
	return a.ToUnit(AmountBTC)
}

// Format renders a as a string in unit u with a trailing unit label.
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+8), 64)

	if u == AmountBTC && strings.Contains(formatted, ".") {
		return fmt.Sprintf("%.8f%s", a.ToUnit(u), units)
	}
	return formatted + units
}

// String is equivalent to Format(AmountBTC).
func (a Amount) String() string {
	return a.Format(AmountBTC)
}

// MulF64 multiplies a by a floating-point factor, rounding to the nearest
// satoshi. Useful for fee-percentage calculations.
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}

// IsDust reports whether value is below DustThreshold (§8 boundary
// behavior). This is informational only and never a validation rule.
func IsDust(value int64) bool {
	return value < DustThreshold
}
