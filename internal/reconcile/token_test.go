package reconcile

import "testing"

func TestTokenRule(t *testing.T) {
	tests := []struct {
		name string
		rule TokenRule
		path string
		want string
	}{
		{"run from log", DefaultRunToken, "logs/job_3.out", "3"},
		{"run from samples", DefaultRunToken, "run_samples_12.txt", "12"},
		{"run without separator", DefaultRunToken, "job.out", "job"},
		{"sample from output", DefaultSampleToken, "final/A_final.fna", "A"},
		{"sample keeps inner dots", DefaultSampleToken, "S1.v2_contigs.fa.gz", "S1.v2"},
		{"sample without separator", DefaultSampleToken, "S9.fna", "S9"},
		{"multi-char separator", TokenRule{Sep: "--", Position: Last}, "a--b--c.txt", "c"},
		{"empty separator is stem", TokenRule{}, "x_y.txt", "x_y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Token(tt.path); got != tt.want {
				t.Errorf("Token(%q) = %q; want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"job_3.out":        "job_3",
		"/a/b/A_final.fna": "A_final",
		"archive.tar.gz":   "archive.tar",
		"noext":            "noext",
		".hidden":          ".hidden",
	}
	for in, want := range tests {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestParsePosition(t *testing.T) {
	if p, ok := ParsePosition("First"); !ok || p != First {
		t.Errorf("ParsePosition(First) = %v, %v", p, ok)
	}
	if p, ok := ParsePosition("last"); !ok || p != Last {
		t.Errorf("ParsePosition(last) = %v, %v", p, ok)
	}
	if _, ok := ParsePosition("middle"); ok {
		t.Error("ParsePosition(middle) should fail")
	}
}
