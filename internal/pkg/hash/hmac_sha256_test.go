package hash

import "testing"

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("test-secret")

	hashed, err := h.Hash("482913")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if !h.Verify(string(hashed), "482913") {
		t.Error("Verify rejected the original input")
	}
	if h.Verify(string(hashed), "482914") {
		t.Error("Verify accepted a different input")
	}

	other := NewHMACSHA256("other-secret")
	if other.Verify(string(hashed), "482913") {
		t.Error("Verify accepted a hash produced with a different key")
	}
}

func TestHMACSHA256Deterministic(t *testing.T) {
	h := NewHMACSHA256("test-secret")

	a, _ := h.Hash("123456")
	b, _ := h.Hash("123456")
	if string(a) != string(b) {
		t.Error("same input produced different hashes")
	}
}
