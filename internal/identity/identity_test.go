package identity_test

import (
	"testing"

	"shadowlist/internal/identity"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := identity.Fingerprint("UExrTzR6WlFHTU9FalkzeDd3")
	b := identity.Fingerprint("UExrTzR6WlFHTU9FalkzeDd3")
	if a != b {
		t.Fatalf("fingerprint not deterministic: %q vs %q", a, b)
	}
}

func TestFingerprintLength(t *testing.T) {
	for _, id := range []string{"", "a", "some-playlist-item-id", "日本語のタイトル"} {
		fp := identity.Fingerprint(id)
		if len(fp) != identity.FingerprintLength {
			t.Fatalf("fingerprint of %q has length %d, want %d", id, len(fp), identity.FingerprintLength)
		}
	}
}

func TestFingerprintDistinctInputs(t *testing.T) {
	ids := []string{
		"UEx0ZXN0MQ", "UEx0ZXN0Mg", "UEx0ZXN0Mw",
		"a", "b", "ab", "ba", "",
	}
	seen := make(map[string]string, len(ids))
	for _, id := range ids {
		fp := identity.Fingerprint(id)
		if prev, ok := seen[fp]; ok {
			t.Fatalf("collision: %q and %q both fingerprint to %q", prev, id, fp)
		}
		seen[fp] = id
	}
}
