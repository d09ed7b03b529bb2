package security

import (
	"strconv"
	"testing"
)

func TestGenerateOTPStaysInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("otp is not numeric: %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("otp out of range: %d", n)
		}
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	if HashToken("123456") != HashToken("123456") {
		t.Fatal("same input must hash identically")
	}
	if HashToken("123456") == HashToken("123457") {
		t.Fatal("different inputs must hash differently")
	}
	if len(HashToken("123456")) != 64 {
		t.Fatal("expected hex-encoded sha-256 digest")
	}
}

func TestTokensEqual(t *testing.T) {
	a := HashToken("123456")
	if !TokensEqual(a, HashToken("123456")) {
		t.Fatal("equal hashes must compare equal")
	}
	if TokensEqual(a, HashToken("654321")) {
		t.Fatal("different hashes must not compare equal")
	}
}
