package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRWF renders an amount in Rwandan Francs with thousand separators.
// Fares are whole francs; fractional parts are dropped.
func FormatRWF(amount float64) string {
	n := int64(amount)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%sRWF %s", sign, formatThousand(n))
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
