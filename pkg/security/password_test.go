package security_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/gudang-backend/pkg/config"
	"github.com/angelmondragon/gudang-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	strong := config.PasswordConfig{ArgonMemoryKB: 16384, ArgonTime: 2, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

	hash, err := security.HashPassword("gudang-rahasia", weak)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if security.NeedsRehash(hash, weak) {
		t.Fatal("hash produced with current params should not need rehash")
	}
	if !security.NeedsRehash(hash, strong) {
		t.Fatal("hash produced with weaker params should need rehash")
	}
	if !security.NeedsRehash("garbage", weak) {
		t.Fatal("malformed hashes always need rehash")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(12)
	if err != nil {
		t.Fatalf("GenerateTempPassword: %v", err)
	}
	if len(pw) != 12 {
		t.Fatalf("expected 12 chars, got %d", len(pw))
	}
	if _, err := security.GenerateTempPassword(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}

func TestGenerateTempPasswordAvoidsLookalikes(t *testing.T) {
	for i := 0; i < 50; i++ {
		pw, err := security.GenerateTempPassword(12)
		if err != nil {
			t.Fatalf("GenerateTempPassword: %v", err)
		}
		if strings.ContainsAny(pw, "0O1lI") {
			t.Fatalf("temporary password %q contains a look-alike character", pw)
		}
		if !strings.ContainsAny(pw, "23456789") {
			t.Fatalf("temporary password %q has no digit", pw)
		}
	}
	if _, err := security.GenerateTempPassword(1); err == nil {
		t.Fatal("expected error for single character password")
	}
}

func TestVerifyPasswordRejectsWrongVersion(t *testing.T) {
	cfg := config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	hash, err := security.HashPassword("gudang-rahasia", cfg)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	tampered := strings.Replace(hash, "$v=19$", "$v=16$", 1)
	if _, err := security.VerifyPassword("gudang-rahasia", tampered); err == nil {
		t.Fatal("expected error for unsupported argon2 version")
	}
}
