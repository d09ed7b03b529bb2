package security

import (
	"errors"
	"testing"
)

func TestPasswordPolicyMinimumLength(t *testing.T) {
	policy := NewPasswordPolicy()

	if err := policy.Validate("abc"); err == nil {
		t.Fatal("expected error for short password")
	} else {
		var verr *PasswordValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected PasswordValidationError, got %T", err)
		}
		if verr.Code != "min_length" {
			t.Fatalf("unexpected code %s", verr.Code)
		}
	}

	// Weak but long enough passwords are accepted; strength is only scored.
	if err := policy.Validate("secret1"); err != nil {
		t.Fatalf("expected secret1 to pass the length gate: %v", err)
	}
}

func TestPasswordStrengthScoreBounds(t *testing.T) {
	policy := NewPasswordPolicy()

	weak := policy.Strength("secret1", "Alice", "a@x.com")
	strong := policy.Strength("correct-horse-battery-staple-42!")

	for _, score := range []int{weak, strong} {
		if score < 0 || score > 4 {
			t.Fatalf("score out of bounds: %d", score)
		}
	}
	if strong < weak {
		t.Fatalf("expected passphrase (%d) to score at least as high as secret1 (%d)", strong, weak)
	}
	if policy.Strength("") != 0 {
		t.Fatal("empty password must score zero")
	}
}
