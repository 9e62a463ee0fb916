package errs

import (
	"errors"
	"testing"
)

func TestKindOfUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := E(TransientCache, "reading queue:123", cause)

	k, ok := KindOf(err)
	if !ok || k != TransientCache {
		t.Fatalf("expected TransientCache, got %v ok=%v", k, ok)
	}
	if !errors.Is(err, err) {
		t.Fatal("expected self-identity under errors.Is")
	}
	if !errors.As(err, new(*Error)) {
		t.Fatal("expected errors.As to find *Error")
	}
}

func TestIs(t *testing.T) {
	err := E(LockContention, "acquire match:gc:lock", nil)
	if !Is(err, LockContention) {
		t.Fatal("expected Is(err, LockContention) true")
	}
	if Is(err, FatalConfig) {
		t.Fatal("expected Is(err, FatalConfig) false")
	}
}

func TestPlainErrorHasNoKind(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatal("expected no Kind for a plain error")
	}
}
