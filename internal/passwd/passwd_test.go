package passwd

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestVerify(t *testing.T) {
	bhash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	sum := sha256.Sum256([]byte("hunter2"))
	shaHex := hex.EncodeToString(sum[:])

	tests := []struct {
		name     string
		stored   string
		password string
		want     bool
	}{
		{"bcrypt match", string(bhash), "hunter2", true},
		{"bcrypt mismatch", string(bhash), "hunter3", false},
		{"sha256 match", shaHex, "hunter2", true},
		{"sha256 uppercase", strings.ToUpper(shaHex), "hunter2", true},
		{"sha256 mismatch", shaHex, "nope", false},
		{"empty stored", "", "", false},
		{"not a hash", "plaintext", "plaintext", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(tt.stored, tt.password); got != tt.want {
				t.Fatalf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashRoundTrip(t *testing.T) {
	hash, err := Hash("1234")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if !IsBcrypt(hash) {
		t.Fatalf("Hash() = %q, want bcrypt prefix", hash)
	}
	if !Verify(hash, "1234") {
		t.Fatal("Verify() = false for freshly hashed password")
	}
}

func TestVerifyPIN(t *testing.T) {
	sum := sha256.Sum256([]byte("0420"))
	tests := []struct {
		stored, pin string
		want        bool
	}{
		{"0420", "0420", true},
		{"0420", "0421", false},
		{hex.EncodeToString(sum[:]), "0420", true},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := VerifyPIN(tt.stored, tt.pin); got != tt.want {
			t.Fatalf("VerifyPIN(%q, %q) = %v, want %v", tt.stored, tt.pin, got, tt.want)
		}
	}
}
