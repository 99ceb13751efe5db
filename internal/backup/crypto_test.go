package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}

	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plain := []byte(`{"balance":90,"transactions":[]}`)

	sealed, err := Encrypt(plain, "family-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !IsEncrypted(sealed) {
		t.Fatal("missing header")
	}
	if bytes.Contains(sealed, []byte("balance")) {
		t.Error("ciphertext leaks plaintext")
	}

	got, err := Decrypt(sealed, "family-secret")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("decrypted = %s", got)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := Encrypt([]byte("data"), "right")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(sealed, "wrong"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
}

func TestDecryptTamperedData(t *testing.T) {
	sealed, _ := Encrypt([]byte("data"), "pass")
	sealed[len(sealed)-1] ^= 0xff
	if _, err := Decrypt(sealed, "pass"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
}

func TestDecryptTruncated(t *testing.T) {
	if _, err := Decrypt([]byte("QQTBshort"), "pass"); !errors.Is(err, ErrTruncatedFile) {
		t.Errorf("err = %v, want ErrTruncatedFile", err)
	}
}

func TestOpenPassesPlainJSONThrough(t *testing.T) {
	plain := []byte(`{"balance":1}`)
	got, err := Open(plain, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("got %s", got)
	}

	sealed, _ := Encrypt(plain, "p")
	if _, err := Open(sealed, ""); !errors.Is(err, ErrPassphrase) {
		t.Errorf("err = %v, want ErrPassphrase", err)
	}
}

func TestEncryptRequiresPassphrase(t *testing.T) {
	if _, err := Encrypt([]byte("x"), ""); !errors.Is(err, ErrPassphrase) {
		t.Errorf("err = %v", err)
	}
}
