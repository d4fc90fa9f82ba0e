package money

import (
	"strconv"
	"strings"
)

// Symbol prefixes every displayed amount.
const Symbol = "₹"

// Format renders whole rupees with Indian digit grouping, e.g. ₹1,23,457.
// Paise are rounded half-up; the stored value is unchanged.
func Format(m Money) string {
	n := m.WholeRupees()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + Symbol + groupIndian(n)
}

// groupIndian places the first separator after three digits and every two after that.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
