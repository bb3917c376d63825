package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Benchmark versions are "major.minor" strings whose components compare as
// integers, so "1.10" sorts after "1.9".

func ParseMajorMinor(v string) (major, minor int, err error) {
	parts := strings.SplitN(strings.TrimSpace(v), ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed version %q", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed version %q", v)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed version %q", v)
	}
	return major, minor, nil
}

// CompareMajorMinor returns -1, 0 or 1. Malformed versions compare as "0.0".
func CompareMajorMinor(a, b string) int {
	aMaj, aMin, _ := ParseMajorMinor(a)
	bMaj, bMin, _ := ParseMajorMinor(b)
	switch {
	case aMaj != bMaj:
		if aMaj < bMaj {
			return -1
		}
		return 1
	case aMin != bMin:
		if aMin < bMin {
			return -1
		}
		return 1
	}
	return 0
}

// NextMinor increments the minor component: "1.3" -> "1.4". A benchmark with
// no version history starts at "1.0".
func NextMinor(current string) string {
	major, minor, err := ParseMajorMinor(current)
	if err != nil {
		return "1.0"
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}

// Release versions are full semver strings, possibly "v"-prefixed and
// possibly carrying a prerelease suffix ("1.2.3-beta"). Only the numeric
// components participate in ordering.

func Tuple(v string) []int {
	clean := strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexByte(clean, '-'); i >= 0 {
		clean = clean[:i]
	}
	parts := strings.Split(clean, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return []int{0, 0, 0}
		}
		out = append(out, n)
	}
	return out
}

// Compare returns -1 if a < b, 0 if equal, 1 if a > b.
func Compare(a, b string) int {
	ta, tb := Tuple(a), Tuple(b)
	for i := 0; i < len(ta) || i < len(tb); i++ {
		var x, y int
		if i < len(ta) {
			x = ta[i]
		}
		if i < len(tb) {
			y = tb[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// IsNewer reports whether latest is strictly newer than current.
func IsNewer(current, latest string) bool {
	return Compare(current, latest) < 0
}

// ValidSemver reports whether v parses as a dotted numeric version, with an
// optional "v" prefix and prerelease suffix.
func ValidSemver(v string) bool {
	clean := strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexByte(clean, '-'); i >= 0 {
		clean = clean[:i]
	}
	if clean == "" {
		return false
	}
	for _, p := range strings.Split(clean, ".") {
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}
