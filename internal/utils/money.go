package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRupees renders a whole-rupee amount for receipts: 1234567 -> "Rs. 1,234,567".
// Non-positive amounts print as "Rs. 0".
func FormatRupees(amount int64) string {
	if amount <= 0 {
		return "Rs. 0"
	}
	return "Rs. " + formatThousand(amount)
}

// FormatKm keeps one decimal for distances shown to users.
func FormatKm(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}

func formatThousand(n int64) string {
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
