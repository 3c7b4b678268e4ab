package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestGeneratedKeyRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if !bytes.Equal(key.Bytes(), restored.Bytes()) {
		t.Fatal("restored key bytes differ from the original")
	}
	if got, want := restored.PubKey().Address().String(), key.PubKey().Address().String(); got != want {
		t.Fatalf("restored address = %s, want %s", got, want)
	}
}

func TestKeyDerivedAddressEncoding(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	addr := key.PubKey().Address()
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(PTXPrefix)) {
		t.Fatalf("address %s does not carry the %s prefix", encoded, PTXPrefix)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if decoded.Array() != addr.Array() {
		t.Fatal("decoded address bytes differ from the derived address")
	}
}

func TestPrivateKeyFromBytesRejectsGarbage(t *testing.T) {
	if _, err := PrivateKeyFromBytes([]byte{0x01, 0x02}); err == nil {
		t.Fatal("expected error for malformed key material")
	}
}
