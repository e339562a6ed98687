package requirements

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToSemVer(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"==3.4.0", "3.4.0"},
		{"~=3.4.0", "~3.4.0"},
		{"^=3.4.0", "^3.4.0"},
		{">=3.4.0", ">=3.4.0"},
		{"@develop#egg=x", "@develop#egg=x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToSemVer(tt.input); got != tt.want {
				t.Errorf("ToSemVer(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToPipVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"3.4.0", "==3.4.0"},
		{"~3.4.0", "~=3.4.0"},
		{"^3.4.0", "^=3.4.0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToPipVersion(tt.input); got != tt.want {
				t.Errorf("ToPipVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPipRoundTrip(t *testing.T) {
	for _, v := range []string{"==1.2.3", "~=1.2.3", "^=1.2.3"} {
		if got := ToPipVersion(ToSemVer(v)); got != v {
			t.Errorf("ToPipVersion(ToSemVer(%q)) = %q", v, got)
		}
	}
}

func TestFromRange(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3.10.2", "==3.10.2"},
		{"~3.10.2", "~=3.10.2"},
		{"^3.10.2", "^=3.10.2"},
		{">=1.0.0 <1.5.0", ">=1.0.0,<1.5.0"},
		{">=1.0.0", ">=1.0.0"},
		{"*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FromRange(tt.input); got != tt.want {
				t.Errorf("FromRange(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRequirements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "whitespace only",
			input: "  \n\n ",
			want:  map[string]string{},
		},
		{
			name:  "pip ranges",
			input: "flake8^=3.7.9\npep8-naming~=0.9.1\n",
			want: map[string]string{
				"flake8":      "^=3.7.9",
				"pep8-naming": "~=0.9.1",
			},
		},
		{
			name:  "comparators and bare names",
			input: "SQLAlchemy>=1.3.0,<1.4.0\nrequests\nalembic == 1.4.2\nsix!=1.0.0",
			want: map[string]string{
				"SQLAlchemy": ">=1.3.0,<1.4.0",
				"requests":   "",
				"alembic":    "== 1.4.2",
				"six":        "!=1.0.0",
			},
		},
		{
			name: "editable and comments",
			input: "# server dependencies\n" +
				"-e git+https://github.com/datavisyn/tdp_core.git@develop#egg=tdp_core\n" +
				"--extra-index-url https://pypi.example.com\n" +
				"-r requirements_dev.txt\n" +
				"phovea_server>=4.0.0\r\n",
			want: map[string]string{
				"-e git+https://github.com/datavisyn/tdp_core.git": "@develop#egg=tdp_core",
				"phovea_server": ">=4.0.0",
			},
		},
		{
			name:  "editable without branch",
			input: "-e ./local_plugin",
			want:  map[string]string{"-e ./local_plugin": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRequirements(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseRequirements() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	reqs := map[string]string{
		"pep8-naming": "~=0.9.1",
		"flake8":      "^=3.7.9",
		"requests":    "",
		"-e git+https://github.com/datavisyn/tdp_core.git": "@develop#egg=tdp_core",
	}

	want := "-e git+https://github.com/datavisyn/tdp_core.git@develop#egg=tdp_core\n" +
		"flake8^=3.7.9\n" +
		"pep8-naming~=0.9.1\n" +
		"requests\n"
	got := Format(reqs)
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	if diff := cmp.Diff(reqs, ParseRequirements(got)); diff != "" {
		t.Errorf("ParseRequirements(Format()) mismatch (-want +got):\n%s", diff)
	}
}
