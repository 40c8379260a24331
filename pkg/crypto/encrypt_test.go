package crypto

import "testing"

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewEncryptorKeyLength(t *testing.T) {
	if _, err := NewEncryptor("short"); err == nil {
		t.Error("expected error for short key")
	}
	if _, err := NewEncryptor(testKey); err != nil {
		t.Errorf("unexpected error for 32-byte key: %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	e, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}

	token := "6EF85D01-B07C-4E67-99F74E13A449DCDE"
	encrypted, err := e.EncryptString(token)
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if encrypted == token {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := e.DecryptString(encrypted)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if decrypted != token {
		t.Errorf("round trip = %q, want %q", decrypted, token)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	e, _ := NewEncryptor(testKey)
	a, _ := e.EncryptString("same")
	b, _ := e.EncryptString("same")
	if a == b {
		t.Error("two encryptions of the same plaintext must differ (random nonce)")
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	e, _ := NewEncryptor(testKey)
	if _, err := e.DecryptString("not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := e.DecryptString("c2hvcnQ="); err == nil {
		t.Error("expected error for truncated ciphertext")
	}

	other, _ := NewEncryptor("ffffffffffffffffffffffffffffffff")
	encrypted, _ := other.EncryptString("secret")
	if _, err := e.DecryptString(encrypted); err == nil {
		t.Error("expected error when decrypting with the wrong key")
	}
}
