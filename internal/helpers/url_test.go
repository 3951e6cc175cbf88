package helpers

import (
	"testing"
)

func TestCanonicalURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "defaults https and cleans path",
			in:   "CS.Stanford.edu/directory/../directory/faculty",
			want: "https://cs.stanford.edu/directory/faculty",
		},
		{
			name: "removes default port and tracking params",
			in:   "http://www.csail.mit.edu:80/person?id=123&utm_source=newsletter#bio",
			want: "http://www.csail.mit.edu/person?id=123",
		},
		{
			name: "sorts query parameters and preserves trailing slash",
			in:   "https://eecs.berkeley.edu/faculty/?b=2&a=1&fbclid=xyz",
			want: "https://eecs.berkeley.edu/faculty/?a=1&b=2",
		},
		{
			name: "handles schemeless url with double slash",
			in:   "//cms.caltech.edu/people/faculty?utm_medium=email",
			want: "https://cms.caltech.edu/people/faculty",
		},
		{
			name: "normalises repeated slashes",
			in:   "https://csd.cmu.edu//directory//faculty",
			want: "https://csd.cmu.edu/directory/faculty",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("CanonicalURL() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalURL() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	t.Parallel()
	if _, err := CanonicalURL(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := CanonicalURL(":///invalid"); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}

func TestURLFingerprintDeterministic(t *testing.T) {
	t.Parallel()
	fp1, err := URLFingerprint("https://CS.Stanford.edu/~ada?utm_campaign=foo")
	if err != nil {
		t.Fatalf("URLFingerprint: %v", err)
	}
	fp2, err := URLFingerprint("cs.stanford.edu/~ada")
	if err != nil {
		t.Fatalf("URLFingerprint: %v", err)
	}
	if fp1 == "" || fp1 != fp2 {
		t.Fatalf("equivalent urls must share a fingerprint: %q vs %q", fp1, fp2)
	}
}
