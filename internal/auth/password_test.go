package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	for _, algorithm := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(algorithm, func(t *testing.T) {
			h, err := NewHasher(algorithm, bcrypt.MinCost)
			if err != nil {
				t.Fatalf("NewHasher() error = %v", err)
			}

			hash, err := h.Hash("s3cret!")
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if hash == "s3cret!" {
				t.Fatal("Hash() returned the plaintext")
			}

			ok, err := h.Compare("s3cret!", hash)
			if err != nil || !ok {
				t.Errorf("Compare(correct) = %v, %v; want true, nil", ok, err)
			}
			ok, err = h.Compare("wrong", hash)
			if err != nil || ok {
				t.Errorf("Compare(wrong) = %v, %v; want false, nil", ok, err)
			}
		})
	}
}

func TestHasherVerifiesEitherAlgorithm(t *testing.T) {
	argon, _ := NewHasher(AlgorithmArgon2id, 0)
	bc, _ := NewHasher(AlgorithmBcrypt, bcrypt.MinCost)

	argonHash, err := argon.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(argonHash, argon2idPrefix) {
		t.Fatalf("argon2id hash has unexpected format: %s", argonHash)
	}

	if ok, err := bc.Compare("pw", argonHash); err != nil || !ok {
		t.Errorf("bcrypt hasher failed to verify argon2id hash: %v, %v", ok, err)
	}
}

func TestNewHasherRejectsUnknown(t *testing.T) {
	if _, err := NewHasher("md5", 0); err == nil {
		t.Fatal("NewHasher(md5) expected error")
	}
}

func TestCompareMalformedHash(t *testing.T) {
	h, _ := NewHasher(AlgorithmBcrypt, bcrypt.MinCost)
	if ok, err := h.Compare("pw", "not-a-hash"); err == nil || ok {
		t.Errorf("Compare(malformed) = %v, %v; want false, error", ok, err)
	}
}
