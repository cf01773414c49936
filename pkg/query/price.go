package query

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumeric   = regexp.MustCompile(`[^0-9.-]`)
	leadingFloat = regexp.MustCompile(`^-?([0-9]+(\.[0-9]*)?|\.[0-9]+)`)
)

// ParsePrice extracts a number from free-text price such as "1 234,50 EUR". The first comma
// becomes the decimal point, everything but digits, dots and minus signs is dropped, and the
// longest leading float is parsed. Text with no usable number yields NaN.
func ParsePrice(text string) float64 {
	cleaned := nonNumeric.ReplaceAllString(strings.Replace(text, ",", ".", 1), "")
	number := leadingFloat.FindString(cleaned)
	if number == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		// Overlong digit runs overflow to ±Inf, which still orders correctly.
		if errors.Is(err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

// comparePrices orders numerically. NaN is neither less nor greater than anything.
func comparePrices(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
