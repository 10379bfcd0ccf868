package locksign

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func generateTestKeys(t *testing.T) (privPath, pubPath string) {
	t.Helper()
	dir := t.TempDir()
	privPath = filepath.Join(dir, "private.asc")
	pubPath = filepath.Join(dir, "public.asc")
	if err := GenerateKey("Test Signer", "signer@example.com", privPath, pubPath); err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return privPath, pubPath
}

func TestSignAndVerify(t *testing.T) {
	privPath, pubPath := generateTestKeys(t)

	dir := t.TempDir()
	lockPath := filepath.Join(dir, "environment.lock.json")
	if err := os.WriteFile(lockPath, []byte(`{"schemaVersion":"1.0"}`), 0644); err != nil {
		t.Fatalf("writing lock fixture: %v", err)
	}

	sigPath, err := SignFile(lockPath, privPath)
	if err != nil {
		t.Fatalf("SignFile failed: %v", err)
	}
	if sigPath != lockPath+".asc" {
		t.Errorf("Expected signature next to lock, got %s", sigPath)
	}

	sig, err := os.ReadFile(sigPath)
	if err != nil {
		t.Fatalf("reading signature: %v", err)
	}
	if !strings.Contains(string(sig), "BEGIN PGP SIGNATURE") {
		t.Error("Expected armored signature")
	}

	identity, err := VerifyFile(lockPath, sigPath, pubPath)
	if err != nil {
		t.Fatalf("VerifyFile failed: %v", err)
	}
	if !strings.Contains(identity, "signer@example.com") {
		t.Errorf("Expected signer identity, got %q", identity)
	}
}

func TestVerifyRejectsTamperedFile(t *testing.T) {
	privPath, pubPath := generateTestKeys(t)

	dir := t.TempDir()
	lockPath := filepath.Join(dir, "environment.lock.json")
	if err := os.WriteFile(lockPath, []byte(`{"schemaVersion":"1.0"}`), 0644); err != nil {
		t.Fatalf("writing lock fixture: %v", err)
	}

	sigPath, err := SignFile(lockPath, privPath)
	if err != nil {
		t.Fatalf("SignFile failed: %v", err)
	}

	if err := os.WriteFile(lockPath, []byte(`{"schemaVersion":"tampered"}`), 0644); err != nil {
		t.Fatalf("tampering with lock: %v", err)
	}

	if _, err := VerifyFile(lockPath, sigPath, pubPath); err == nil {
		t.Error("VerifyFile should fail for tampered content")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	privPath, _ := generateTestKeys(t)
	_, otherPub := generateTestKeys(t)

	dir := t.TempDir()
	lockPath := filepath.Join(dir, "environment.lock.json")
	if err := os.WriteFile(lockPath, []byte(`{}`), 0644); err != nil {
		t.Fatalf("writing lock fixture: %v", err)
	}

	sigPath, err := SignFile(lockPath, privPath)
	if err != nil {
		t.Fatalf("SignFile failed: %v", err)
	}

	if _, err := VerifyFile(lockPath, sigPath, otherPub); err == nil {
		t.Error("VerifyFile should fail with an unrelated public key")
	}
}

func TestSignFileMissingKeyring(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "lock.json")
	if err := os.WriteFile(lockPath, []byte(`{}`), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := SignFile(lockPath, filepath.Join(dir, "missing.asc")); err == nil {
		t.Error("expected missing keyring to fail")
	}
}

func TestSignRequiresPrivateKey(t *testing.T) {
	_, pubPath := generateTestKeys(t)

	dir := t.TempDir()
	lockPath := filepath.Join(dir, "lock.json")
	if err := os.WriteFile(lockPath, []byte(`{}`), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := SignFile(lockPath, pubPath); err == nil {
		t.Error("signing with a public keyring should fail")
	}
}
