package security

import (
	"strings"
	"testing"
)

func TestTextSanitizer_Sanitize(t *testing.T) {
	s := NewTextSanitizer()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "help bathing", "help bathing"},
		{"trims", "  help bathing \n", "help bathing"},
		{"script removed", `needs meds<script>alert(1)</script>`, "needs meds"},
		{"tags stripped", "<b>twice</b> a day", "twice a day"},
		{"ampersand kept", "bathing & dressing", "bathing & dressing"},
		{"quotes kept", `she says "no stairs" and it's urgent`, `she says "no stairs" and it's urgent`},
		{"encoded script removed", "&lt;script&gt;alert(1)&lt;/script&gt; help", "help"},
		{"encoded tag stripped", "&lt;b&gt;twice&lt;/b&gt; a day", "twice a day"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTextSanitizer_NeverEmitsTags(t *testing.T) {
	s := NewTextSanitizer()

	inputs := []string{
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"&#60;img src=x onerror=alert(1)&#62;",
		"&lt;&lt;b&gt;&gt;hi",
		"1 < 2 and 3 > 2",
	}
	for _, in := range inputs {
		if got := s.Sanitize(in); strings.ContainsAny(got, "<>") {
			t.Errorf("Sanitize(%q) = %q, contains angle brackets", in, got)
		}
	}
}
