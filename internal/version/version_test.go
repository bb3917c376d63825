package version

import "testing"

func TestCompareMajorMinor(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "equal", a: "1.3", b: "1.3", want: 0},
		{name: "minor_less", a: "1.3", b: "1.4", want: -1},
		{name: "two_digit_minor_beats_one_digit", a: "1.10", b: "1.9", want: 1},
		{name: "major_wins_over_minor", a: "2.0", b: "1.99", want: 1},
		{name: "malformed_compares_as_zero", a: "junk", b: "0.0", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CompareMajorMinor(tc.a, tc.b); got != tc.want {
				t.Fatalf("CompareMajorMinor(%q, %q)=%d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestNextMinor(t *testing.T) {
	cases := []struct {
		current string
		want    string
	}{
		{current: "1.0", want: "1.1"},
		{current: "1.3", want: "1.4"},
		{current: "1.9", want: "1.10"},
		{current: "2.41", want: "2.42"},
		{current: "", want: "1.0"},
	}
	for _, tc := range cases {
		if got := NextMinor(tc.current); got != tc.want {
			t.Fatalf("NextMinor(%q)=%q, want %q", tc.current, got, tc.want)
		}
	}
}

func TestCompareSemver(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "patch_bump", a: "1.0.0", b: "1.0.1", want: -1},
		{name: "v_prefix_ignored", a: "v1.2.3", b: "1.2.3", want: 0},
		{name: "prerelease_suffix_ignored", a: "1.2.3-beta", b: "1.2.3", want: 0},
		{name: "ten_beats_nine", a: "1.10.0", b: "1.9.9", want: 1},
		{name: "shorter_tuple_padded", a: "1.2", b: "1.2.0", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(tc.a, tc.b); got != tc.want {
				t.Fatalf("Compare(%q, %q)=%d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestIsNewer(t *testing.T) {
	if !IsNewer("1.0.0", "1.0.1") {
		t.Fatal("expected 1.0.1 to be newer than 1.0.0")
	}
	if IsNewer("1.0.1", "1.0.1") {
		t.Fatal("equal versions are not newer")
	}
	if IsNewer("2.0.0", "1.9.9") {
		t.Fatal("older version reported as newer")
	}
}
