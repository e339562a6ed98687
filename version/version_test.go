package version

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"1.2.3", "1.2.3", true},
		{"5.1", "5.1.0", true},
		{"v2", "2.0.0", true},
		{"^7.0.1", "7.0.1", true},
		{"~=3.10.2", "3.10.2", true},
		{"4.2.0-beta.0", "4.2.0", true},
		{"develop", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := Coerce(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && v.String() != tt.want {
				t.Errorf("Coerce(%q) = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Prerelease tags survive
		{"4.2.0-alpha.1", "4.2.0-alpha.1"},
		{"v4.2.0-beta.0", "4.2.0-beta.0"},

		// Everything else is coerced
		{"v5.1.0", "5.1.0"},
		{"5.1", "5.1.0"},
		{"2.1.0+build.7", "2.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := Normalize(tt.input)
			if !ok {
				t.Fatalf("Normalize(%q) failed", tt.input)
			}
			if v.String() != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.0.0", 1},
		{"v5.1.0", "5.1.0", 0},
		{"5.1", "5.1.0", 0},

		// Prerelease sorts before release and by identifier
		{"4.2.0-alpha.1", "4.2.0-beta.0", -1},
		{"4.2.0-beta.0", "4.2.0", -1},

		// Unparseable strings sort first
		{"develop", "1.0.0", -1},
		{"1.0.0", "develop", 1},
		{"develop", "master", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMaxAndSortDescending(t *testing.T) {
	vs := []*semver.Version{
		semver.MustParse("2.1.0"),
		semver.MustParse("4.2.0-beta.0"),
		semver.MustParse("4.2.0-alpha.1"),
		semver.MustParse("3.0.0"),
	}

	if got := Max(vs).String(); got != "4.2.0-beta.0" {
		t.Errorf("Max() = %q, want %q", got, "4.2.0-beta.0")
	}
	if Max(nil) != nil {
		t.Error("Max(nil) should be nil")
	}

	SortDescending(vs)
	want := []string{"4.2.0-beta.0", "4.2.0-alpha.1", "3.0.0", "2.1.0"}
	for i, v := range vs {
		if v.String() != want[i] {
			t.Errorf("SortDescending()[%d] = %q, want %q", i, v.String(), want[i])
		}
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		v, c string
		want bool
	}{
		{"v2.0.0", "^v2.0.0", true},
		{"v2.2.2", "^v2.0.0", true},
		{"v3.0.0", "^v2.0.0", false},
		{"v1.0.0", "^v2.0.0", false},
		{"v2.0.2", "~v2.0.0", true},
		{"v2.1.0", "~v2.0.0", false},
		{"develop", "^1.0.0", false},
		{"1.0.0", "not a range", false},
	}

	for _, tt := range tests {
		t.Run(tt.v+"_"+tt.c, func(t *testing.T) {
			if got := Satisfies(tt.v, tt.c); got != tt.want {
				t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.v, tt.c, got, tt.want)
			}
		})
	}
}

func TestRangeBase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"^4.2.0", "4.2.0"},
		{"~2.2.0", "2.2.0"},
		{"^4.2.0-beta.1", "4.2.0-beta.1"},
		{"^5.1", "5.1.0"},
		{"~v3.0.0", "3.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := RangeBase(tt.input)
			if !ok {
				t.Fatalf("RangeBase(%q) failed", tt.input)
			}
			if v.String() != tt.want {
				t.Errorf("RangeBase(%q) = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}
}

func TestCaretAndTildeUpper(t *testing.T) {
	tests := []struct {
		input     string
		wantCaret string
		wantTilde string
	}{
		{"4.2.0", "5.0.0", "4.3.0"},
		{"0.2.3", "0.3.0", "0.3.0"},
		{"0.0.3", "0.0.4", "0.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v := semver.MustParse(tt.input)
			if got := CaretUpper(v).String(); got != tt.wantCaret {
				t.Errorf("CaretUpper(%s) = %s, want %s", tt.input, got, tt.wantCaret)
			}
			if got := TildeUpper(v).String(); got != tt.wantTilde {
				t.Errorf("TildeUpper(%s) = %s, want %s", tt.input, got, tt.wantTilde)
			}
		})
	}
}

func TestGreaterThanRange(t *testing.T) {
	tests := []struct {
		v, r string
		want bool
	}{
		{"4.2.0-beta.0", "^4.2.0", false},
		{"4.9.9", "^4.2.0", false},
		{"5.0.0", "^4.2.0", true},
		{"5.0.0-alpha", "^4.2.0", true},
		{"5.0.0-0", "^4.2.0", true},
		{"4.3.0", "~4.2.0", true},
		{"4.3.0-rc.1", "~4.2.0", true},
		{"4.2.9-rc.1", "~4.2.0", false},

		// A prerelease upper bound is taken as written
		{"5.0.0-0", "<5.0.0-0", true},
		{"4.9.9-beta.1", "<5.0.0-0", false},
		{"2.1.0", "~2.2.0", false},

		// Inclusive and exact bounds
		{"2.0.0", "<=2.0.0", false},
		{"2.0.1", "<=2.0.0", true},
		{"1.0.1", "1.0.0", true},

		// No upper bound, never exceeded
		{"99.0.0", ">=1.0.0", false},

		// Unparseable range
		{"1.0.0", "foo||bar", false},
	}

	for _, tt := range tests {
		t.Run(tt.v+"_"+tt.r, func(t *testing.T) {
			v, ok := Normalize(tt.v)
			if !ok {
				t.Fatalf("Normalize(%q) failed", tt.v)
			}
			if got := GreaterThanRange(v, tt.r); got != tt.want {
				t.Errorf("GreaterThanRange(%q, %q) = %v, want %v", tt.v, tt.r, got, tt.want)
			}
		})
	}
}
