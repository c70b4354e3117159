package utils

import (
	"encoding/base64"
	"testing"

	"mailprobe/config"
)

func setEncryptionKey(t *testing.T, key string) {
	t.Helper()
	old := config.AppConfig.EncryptionKey
	config.AppConfig.EncryptionKey = key
	t.Cleanup(func() { config.AppConfig.EncryptionKey = old })
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	setEncryptionKey(t, "unit-test-secret")

	plaintexts := []string{
		"hunter2",
		"pässword with ünicode",
		"a much longer credential string for a proxy account that nobody should read",
	}

	for _, plaintext := range plaintexts {
		encrypted, err := Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) returned error: %v", plaintext, err)
		}
		if encrypted == plaintext {
			t.Errorf("Encrypt(%q) returned the plaintext unchanged", plaintext)
		}

		decrypted, err := Decrypt(encrypted)
		if err != nil {
			t.Fatalf("Decrypt returned error: %v", err)
		}
		if decrypted != plaintext {
			t.Errorf("round trip = %q, want %q", decrypted, plaintext)
		}
	}
}

func TestEncryptEmptyStringStaysEmpty(t *testing.T) {
	setEncryptionKey(t, "unit-test-secret")

	encrypted, err := Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt(\"\") returned error: %v", err)
	}
	if encrypted != "" {
		t.Errorf("Encrypt(\"\") = %q, want empty", encrypted)
	}

	decrypted, err := Decrypt("")
	if err != nil {
		t.Fatalf("Decrypt(\"\") returned error: %v", err)
	}
	if decrypted != "" {
		t.Errorf("Decrypt(\"\") = %q, want empty", decrypted)
	}
}

func TestEncryptUsesRandomIV(t *testing.T) {
	setEncryptionKey(t, "unit-test-secret")

	first, err := Encrypt("same input")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	second, err := Encrypt("same input")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	if first == second {
		t.Error("two encryptions of the same plaintext are identical")
	}
}

func TestDecryptRejectsCorruptInput(t *testing.T) {
	setEncryptionKey(t, "unit-test-secret")

	if _, err := Decrypt("%%% not base64 %%%"); err == nil {
		t.Error("Decrypt accepted non-base64 input")
	}

	short := base64.URLEncoding.EncodeToString([]byte("tiny"))
	if _, err := Decrypt(short); err == nil {
		t.Error("Decrypt accepted a ciphertext shorter than one block")
	}
}

func TestDecryptWithWrongKeyGarbles(t *testing.T) {
	setEncryptionKey(t, "key-one")
	encrypted, err := Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	config.AppConfig.EncryptionKey = "key-two"
	decrypted, err := Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if decrypted == "hunter2" {
		t.Error("decryption under a different key recovered the plaintext")
	}
}
