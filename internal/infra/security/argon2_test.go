package security

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	encoded, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.HasPrefix(encoded, "argon2id$v=19$") {
		t.Fatalf("unexpected encoded format: %s", encoded)
	}

	ok, err := VerifyPassword("secret1", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = VerifyPassword("not-the-password", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword mismatch: %v", err)
	}
	if ok {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	first, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("secret1", "plainly-not-an-encoded-hash"); err == nil {
		t.Fatal("expected error for malformed encoded hash")
	}
}

func TestConfigureArgon2RejectsWeakParams(t *testing.T) {
	defer func() {
		if err := ConfigureArgon2(DefaultArgon2Config()); err != nil {
			t.Fatalf("restore default config: %v", err)
		}
	}()

	weak := DefaultArgon2Config()
	weak.Memory = 1024
	if err := ConfigureArgon2(weak); err == nil {
		t.Fatal("expected error for sub-minimum memory")
	}

	zeroIter := DefaultArgon2Config()
	zeroIter.Iterations = 0
	if err := ConfigureArgon2(zeroIter); err == nil {
		t.Fatal("expected error for zero iterations")
	}
}
