package report

import "strings"

// NumbersMatch reports whether two stored subscriber numbers identify the
// same party. Stored numbers vary in trunk and country prefixes, so after
// an exact comparison it falls back to suffix equality on the last 10 and
// then the last 9 digits. The comparison is symmetric.
func NumbersMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	da, db := digitsOnly(a), digitsOnly(b)
	if da == "" || db == "" {
		return false
	}
	if da == db {
		return true
	}
	return suffixEqual(da, db, 10) || suffixEqual(da, db, 9)
}

// LastDigits returns up to n trailing digits of a number, used to push a
// coarse LIKE pre-filter into batched candidate queries.
func LastDigits(number string, n int) string {
	d := digitsOnly(number)
	if len(d) <= n {
		return d
	}
	return d[len(d)-n:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func suffixEqual(a, b string, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return a[len(a)-n:] == b[len(b)-n:]
}
