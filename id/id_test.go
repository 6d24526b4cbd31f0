package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/folio/id"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"company with dots", "Ivan Horvat d.o.o.", "ivan-horvat-doo"},
		{"surrounding and repeated spaces", "  Multi   Space  ", "multi-space"},
		{"empty", "", ""},
		{"invoice number", "0001", "0001"},
		{"mixed separators", "INV / 2024 -- 07", "inv-2024-07"},
		{"tabs and newlines", "a\t\nb", "a-b"},
		{"only punctuation", "!!!", ""},
		{"non ascii letters dropped", "Čokolada Šime", "okolada-ime"},
		{"leading and trailing dashes", "--abc--", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := id.Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Ivan Horvat d.o.o.", "  Multi   Space  ", "INV-0042", "x"}
	for _, in := range inputs {
		once := id.Slugify(in)
		if twice := id.Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFallback(t *testing.T) {
	prefixes := []id.Prefix{id.PrefixInvoice, id.PrefixClient, id.PrefixProfile}

	for _, p := range prefixes {
		t.Run(string(p), func(t *testing.T) {
			got := id.Fallback(p)
			if !strings.HasPrefix(got, string(p)+"-") {
				t.Errorf("expected prefix %q, got %q", string(p)+"-", got)
			}
			if id.Slugify(got) != got {
				t.Errorf("fallback token %q is not slug-safe", got)
			}
			if !id.Valid(got) {
				t.Errorf("fallback token %q is not a valid record id", got)
			}
		})
	}
}

func TestFallbackUniqueness(t *testing.T) {
	a := id.Fallback(id.PrefixInvoice)
	b := id.Fallback(id.PrefixInvoice)
	if a == b {
		t.Errorf("two consecutive Fallback() calls returned the same token: %q", a)
	}
}

func TestFromText(t *testing.T) {
	if got := id.FromText("Acme Ltd", id.PrefixClient); got != "acme-ltd" {
		t.Errorf("FromText = %q, want %q", got, "acme-ltd")
	}

	got := id.FromText("***", id.PrefixClient)
	if !strings.HasPrefix(got, "client-") {
		t.Errorf("expected fallback token for empty slug, got %q", got)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"0001", true},
		{"invoice-01h455vb4pex5vsknk084sn02q", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../etc/passwd", false},
		{"a/b", false},
		{`a\b`, false},
	}

	for _, tt := range tests {
		if got := id.Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
