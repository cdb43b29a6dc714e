package password

import (
	"strings"
	"testing"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	encoded, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	if !Verify("s3cret-pass", encoded) {
		t.Fatalf("expected password to verify")
	}
	if Verify("wrong-pass", encoded) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestVerifyRejectsMalformedEncoding(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=2,p=1$!!$aGFzaA",
	}
	for _, encoded := range cases {
		if Verify("anything", encoded) {
			t.Fatalf("expected malformed encoding %q to fail", encoded)
		}
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	first, err := Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct encodings for identical passwords")
	}
}
