package depmerge

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestMerger(t *testing.T, opts ...Option) *Merger {
	t.Helper()
	m, err := NewMerger(append([]Option{WithLogger(nil)}, opts...)...)
	if err != nil {
		t.Fatalf("NewMerger() error = %v", err)
	}
	return m
}

func TestMergeVersions(t *testing.T) {
	tests := []struct {
		name     string
		dep      string
		versions []string
		want     string
	}{
		{
			name: "plain version wins over source range",
			dep:  "phovea_core",
			versions: []string{
				"github:phovea/phovea_core#semver:^7.0.1",
				"github:phovea/phovea_core#semver:^6.0.1",
				"^7.0.1",
				"^7.0.2",
			},
			want: "^7.0.2",
		},
		{
			name: "source range wins and keeps prefix",
			dep:  "phovea_core",
			versions: []string{
				"github:phovea/phovea_core#semver:~7.0.1",
				"github:phovea/phovea_core#semver:^6.0.1",
				"^7.0.1",
			},
			want: "github:phovea/phovea_core#semver:~7.0.1",
		},
		{
			name:     "single value returned unchanged",
			dep:      "d3",
			versions: []string{"^5.16.0"},
			want:     "^5.16.0",
		},
		{
			name:     "duplicates collapse",
			dep:      "d3",
			versions: []string{"~5.16.0", "~5.16.0", "~5.16.0"},
			want:     "~5.16.0",
		},
		{
			name:     "overlapping ranges intersect",
			dep:      "lodash",
			versions: []string{"^4.17.0", "~4.17.15", "^4.17.10"},
			want:     "~4.17.15",
		},
		{
			name:     "exact inside range",
			dep:      "lodash",
			versions: []string{"^4.17.0", "4.17.21"},
			want:     "4.17.21",
		},
		{
			name:     "disjoint ranges fall back to max",
			dep:      "phovea_core",
			versions: []string{"^7.0.1", "^6.0.1"},
			want:     "^7.0.1",
		},
		{
			name:     "disjoint exact versions fall back to max",
			dep:      "jquery",
			versions: []string{"3.4.1", "3.5.0"},
			want:     "3.5.0",
		},
		{
			name:     "prerelease outside release range falls back",
			dep:      "x",
			versions: []string{"^4.1.0", "4.2.0-beta.0"},
			want:     "^4.1.0",
		},
		{
			name:     "prerelease beyond range wins fallback",
			dep:      "x",
			versions: []string{"5.0.0-beta.0", "^4.2.0"},
			want:     "5.0.0-beta.0",
		},
		{
			name: "same branch everywhere",
			dep:  "phovea_ui",
			versions: []string{
				"github:phovea/phovea_ui#develop",
				"github:phovea/phovea_ui#develop",
				"^7.0.0",
			},
			want: "github:phovea/phovea_ui#develop",
		},
		{
			name: "same branch with different hosts keeps first",
			dep:  "phovea_ui",
			versions: []string{
				"github:phovea/phovea_ui#develop",
				"gitlab:phovea/phovea_ui#develop",
			},
			want: "github:phovea/phovea_ui#develop",
		},
		{
			name: "source ranges merge among themselves",
			dep:  "phovea_core",
			versions: []string{
				"github:phovea/phovea_core#semver:^7.0.1",
				"github:phovea/phovea_core#semver:^7.0.3",
			},
			want: "github:phovea/phovea_core#semver:^7.0.3",
		},
		{
			name: "first prefix is the template",
			dep:  "phovea_core",
			versions: []string{
				"gitlab:phovea/phovea_core#semver:^7.0.1",
				"github:phovea/phovea_core#semver:^7.0.1",
			},
			want: "gitlab:phovea/phovea_core#semver:^7.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMerger(t)
			got, err := m.MergeVersions(tt.dep, tt.versions)
			if err != nil {
				t.Fatalf("MergeVersions(%q) error = %v", tt.versions, err)
			}
			if got != tt.want {
				t.Errorf("MergeVersions(%q) = %q, want %q", tt.versions, got, tt.want)
			}
		})
	}
}

func TestMergeVersions_BranchConflict(t *testing.T) {
	refs := []string{
		"git+ssh://git@gitlab.customer.com:Target360/plugins/target360#dv_develop",
		"git+ssh://git@gitlab.customer.com:Target360/plugins/target360#master",
	}
	m := newTestMerger(t)

	_, err := m.MergeVersions("target360", append(slices.Clone(refs), "4.0.0"))
	if !errors.Is(err, ErrBranchConflict) {
		t.Fatalf("MergeVersions() error = %v, want ErrBranchConflict", err)
	}

	var cerr *BranchConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("MergeVersions() error type = %T, want *BranchConflictError", err)
	}
	if cerr.Name != "target360" {
		t.Errorf("Name = %q, want %q", cerr.Name, "target360")
	}
	if diff := cmp.Diff(refs, cerr.Refs); diff != "" {
		t.Errorf("Refs mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(err.Error(), "please use the same branch in all versions") {
		t.Errorf("Error() = %q, want actionable suffix", err.Error())
	}
}

func TestMergeVersions_OtherHostsAreNotBranches(t *testing.T) {
	var fallbacks []Fallback
	m := newTestMerger(t, WithFallbackHandler(func(f Fallback) {
		fallbacks = append(fallbacks, f)
	}))

	got, err := m.MergeVersions("repo", []string{
		"git+https://bitbucket.org/o/r.git#b",
		"git+https://bitbucket.org/o/r.git#a",
	})
	if err != nil {
		t.Fatalf("MergeVersions() error = %v", err)
	}
	if want := "git+https://bitbucket.org/o/r.git#b"; got != want {
		t.Errorf("MergeVersions() = %q, want %q", got, want)
	}
	if len(fallbacks) != 1 {
		t.Errorf("got %d fallbacks, want 1", len(fallbacks))
	}
}

func TestMergeVersions_MixedRefsConflict(t *testing.T) {
	m := newTestMerger(t)
	_, err := m.MergeVersions("phovea_core", []string{
		"github:phovea/phovea_core#semver:^7.0.1",
		"github:phovea/phovea_core#develop",
	})
	if !errors.Is(err, ErrBranchConflict) {
		t.Errorf("MergeVersions() error = %v, want ErrBranchConflict", err)
	}
}

func TestMergeVersions_Errors(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     error
	}{
		{"latest", []string{"^1.0.0", "latest"}, ErrLatestVersion},
		{"only latest", []string{"latest"}, ErrLatestVersion},
		{"latest inside source range", []string{
			"github:org/repo#semver:latest",
			"github:org/repo#semver:^1.0.0",
		}, ErrLatestVersion},
		{"empty", nil, ErrNoVersions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMerger(t)
			_, err := m.MergeVersions("dep", tt.versions)
			if !errors.Is(err, tt.want) {
				t.Errorf("MergeVersions(%q) error = %v, want %v", tt.versions, err, tt.want)
			}
			if err != nil && !strings.HasPrefix(err.Error(), "dep: ") {
				t.Errorf("error %q does not name the dependency", err)
			}
		})
	}
}

func TestMergeVersions_DedupIdempotent(t *testing.T) {
	for _, v := range []string{"^7.0.1", "7.0.1", "~7.0.1", "github:org/repo#develop", "github:org/repo#semver:^1.0.0"} {
		m := newTestMerger(t)
		once, err := m.MergeVersions("dep", []string{v})
		if err != nil {
			t.Fatalf("MergeVersions(%q) error = %v", v, err)
		}
		thrice, err := m.MergeVersions("dep", []string{v, v, v})
		if err != nil {
			t.Fatalf("MergeVersions(%q x3) error = %v", v, err)
		}
		if once != thrice || once != v {
			t.Errorf("MergeVersions(%q) = %q, x3 = %q", v, once, thrice)
		}
	}
}

func TestMergeVersions_Deterministic(t *testing.T) {
	inputs := [][]string{
		{"^7.0.1", "^6.0.1", "~7.0.3"},
		{"4.2.0-alpha.1", "4.2.0-beta.0", "^4.2.0", "~4.2.0", "2.1.0", "~2.2.0"},
		{"^4.17.0", "~4.17.15", "^4.17.10"},
		{"develop", "master"},
	}

	m := newTestMerger(t)
	for _, versions := range inputs {
		want, err := m.MergeVersions("dep", versions)
		if err != nil {
			t.Fatalf("MergeVersions(%q) error = %v", versions, err)
		}
		reversed := slices.Clone(versions)
		slices.Reverse(reversed)
		for range 2 {
			got, err := m.MergeVersions("dep", reversed)
			if err != nil {
				t.Fatalf("MergeVersions(%q) error = %v", reversed, err)
			}
			if got != want {
				t.Errorf("MergeVersions(%q) = %q, MergeVersions(%q) = %q", versions, want, reversed, got)
			}
		}
	}
}

func TestMergeVersions_FallbackReporting(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	var got []Fallback

	m, err := NewMerger(WithLogger(logger), WithFallbackHandler(func(f Fallback) {
		got = append(got, f)
	}))
	if err != nil {
		t.Fatalf("NewMerger() error = %v", err)
	}

	// Overlapping ranges never fall back.
	if _, err := m.MergeVersions("lodash", []string{"^4.17.0", "^4.17.10"}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("fallbacks after intersection = %v, want none", got)
	}

	if _, err := m.MergeVersions("phovea_core", []string{"^7.0.1", "^6.0.1", "^7.0.1"}); err != nil {
		t.Fatal(err)
	}
	want := []Fallback{{
		Ecosystem:  NPM,
		Name:       "phovea_core",
		Candidates: []string{"^7.0.1", "^6.0.1"},
		Selected:   "^7.0.1",
	}}
	if diff := cmp.Diff(want, got, cmpIgnoreReason); diff != "" {
		t.Errorf("fallbacks mismatch (-want +got):\n%s", diff)
	}
	if got[0].Reason == "" {
		t.Error("Fallback.Reason is empty")
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "phovea_core") {
		t.Errorf("log output = %q, want a warning naming the dependency", buf.String())
	}
}

func TestMergeVersions_SourceMergeDoesNotWarn(t *testing.T) {
	var got []Fallback
	m := newTestMerger(t, WithFallbackHandler(func(f Fallback) { got = append(got, f) }))

	// The source ranges ^7.0.1 and ^6.0.1 do not intersect, but the nested
	// merges stay silent.
	_, err := m.MergeVersions("phovea_core", []string{
		"github:phovea/phovea_core#semver:^7.0.1",
		"github:phovea/phovea_core#semver:^6.0.1",
		"^7.0.2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("fallbacks = %v, want none", got)
	}
}

func TestNewMerger_InvalidOption(t *testing.T) {
	if _, err := NewMerger(WithFallbackHandler(nil)); err == nil {
		t.Error("NewMerger(WithFallbackHandler(nil)) error = nil, want error")
	}
	if _, err := MergeVersions("dep", []string{"1.0.0"}, WithFallbackHandler(nil)); err == nil {
		t.Error("MergeVersions() with invalid option error = nil, want error")
	}
}

var cmpIgnoreReason = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Reason"
}, cmp.Ignore())
