package webhook

import (
	"testing"
)

func TestHMACVerifier(t *testing.T) {
	secret := "test-secret-key"
	body := []byte(`{"ref":"refs/heads/main","repository":{"name":"tfm"}}`)
	validSig := computeSignature(body, []byte(secret))

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			body:      body,
			signature: validSig,
			want:      true,
		},
		{
			name:      "wrong signature",
			secret:    secret,
			body:      body,
			signature: "sha256=0000000000000000000000000000000000000000000000000000000000000000",
			want:      false,
		},
		{
			name:      "tampered body",
			secret:    secret,
			body:      []byte(`{"ref":"refs/heads/evil"}`),
			signature: validSig,
			want:      false,
		},
		{
			name:      "wrong secret",
			secret:    "some-other-secret",
			body:      body,
			signature: validSig,
			want:      false,
		},
		{
			name:      "missing signature fails closed",
			secret:    secret,
			body:      body,
			signature: "",
			want:      false,
		},
		{
			name:      "missing sha256 prefix",
			secret:    secret,
			body:      body,
			signature: computeSignature(body, []byte(secret))[len("sha256="):],
			want:      false,
		},
		{
			name:      "truncated signature is a plain mismatch",
			secret:    secret,
			body:      body,
			signature: validSig[:20],
			want:      false,
		},
		{
			name:      "no secret skips verification",
			secret:    "",
			body:      body,
			signature: "",
			want:      true,
		},
		{
			name:      "no secret ignores bogus signature",
			secret:    "",
			body:      body,
			signature: "sha256=not-even-hex",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewHMACVerifier(tt.secret)
			if got := v.Verify(tt.body, tt.signature); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeSignature(t *testing.T) {
	body := []byte("test payload")
	secret := []byte("test-secret")

	sig := computeSignature(body, secret)

	// "sha256=" prefix plus 32 bytes of hex.
	if len(sig) != len("sha256=")+64 {
		t.Errorf("signature length = %d, want %d", len(sig), len("sha256=")+64)
	}
	if sig[:7] != "sha256=" {
		t.Errorf("signature prefix = %q, want %q", sig[:7], "sha256=")
	}

	if sig != computeSignature(body, secret) {
		t.Error("signature should be deterministic")
	}

	if sig == computeSignature([]byte("different"), secret) {
		t.Error("different body should produce different signature")
	}
}
