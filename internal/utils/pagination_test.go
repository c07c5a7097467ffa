package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		name string
		s    string
		def  int
		want int
	}{
		{"absent uses default", "", 20, 20},
		{"valid page", "3", 1, 3},
		{"negative parses as-is", "-13", 1, -13},
		{"leading zeros", "0012", 99, 12},
		{"garbage uses default", "abc", 5, 5},
		{"no trimming", " 42", 7, 7},
		{"overflow uses default", "999999999999999999999999", 20, 20},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Errorf("%s: AtoiDefault(%q, %d) = %d, want %d", tc.name, tc.s, tc.def, got, tc.want)
		}
	}
}
