package rikishi

import "testing"

func TestRankNoFromShort(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{code: "Y", want: RankYokozuna},
		{code: "O", want: RankOzeki},
		{code: "S", want: RankSekiwake},
		{code: "K", want: RankKomusubi},
		{code: "M1", want: 5},
		{code: "M14", want: 18},
		{code: "J2", want: 6},
	}

	for _, tt := range tests {
		got, err := RankNoFromShort(tt.code)
		if err != nil {
			t.Fatalf("RankNoFromShort(%q): %v", tt.code, err)
		}
		if got != tt.want {
			t.Fatalf("RankNoFromShort(%q)=%d want=%d", tt.code, got, tt.want)
		}
	}
}

func TestRankNoFromShort_Invalid(t *testing.T) {
	for _, code := range []string{"", "Mx", "  "} {
		if _, err := RankNoFromShort(code); err == nil {
			t.Fatalf("expected error for code %q", code)
		}
	}
}
