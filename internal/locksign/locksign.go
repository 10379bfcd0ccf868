// Package locksign creates and checks detached armored OpenPGP signatures
// over lock files, so a published lock can be tied to the key that produced
// it.
package locksign

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// SignFile signs the file at path with the first signing-capable key in the
// armored private keyring and writes the detached armored signature next to
// it as <path>.asc. It returns the signature path.
func SignFile(path, keyringPath string) (string, error) {
	signer, err := loadSigner(keyringPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file to sign: %w", err)
	}

	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, signer, bytes.NewReader(data), nil); err != nil {
		return "", fmt.Errorf("signing %s: %w", path, err)
	}

	sigPath := path + ".asc"
	if err := os.WriteFile(sigPath, sig.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing signature: %w", err)
	}
	return sigPath, nil
}

// VerifyFile checks the detached armored signature at sigPath against the
// file at path using the armored public keyring. It returns the primary
// identity of the signing key.
func VerifyFile(path, sigPath, keyringPath string) (string, error) {
	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading signed file: %w", err)
	}
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return "", fmt.Errorf("reading signature: %w", err)
	}

	signer, err := openpgp.CheckArmoredDetachedSignature(
		keyring, bytes.NewReader(data), bytes.NewReader(sig), nil)
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}

	for name := range signer.Identities {
		return name, nil
	}
	return "", nil
}

// GenerateKey creates a fresh key pair and writes armored private and
// public keyring files. Meant for tests and first-time setup.
func GenerateKey(name, email, privPath, pubPath string) error {
	entity, err := openpgp.NewEntity(name, "", email, nil)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	err = writeArmored(privPath, openpgp.PrivateKeyType, func(w io.Writer) error {
		return entity.SerializePrivate(w, nil)
	})
	if err != nil {
		return err
	}
	return writeArmored(pubPath, openpgp.PublicKeyType, entity.Serialize)
}

func writeArmored(path, blockType string, serialize func(io.Writer) error) error {
	var out bytes.Buffer
	armored, err := armor.Encode(&out, blockType, nil)
	if err != nil {
		return fmt.Errorf("encoding armor: %w", err)
	}
	if err := serialize(armored); err != nil {
		return fmt.Errorf("serializing key: %w", err)
	}
	if err := armored.Close(); err != nil {
		return fmt.Errorf("closing armor: %w", err)
	}
	out.WriteByte('\n')

	if err := os.WriteFile(path, out.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}
	return nil
}

func loadKeyring(path string) (openpgp.EntityList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, fmt.Errorf("reading keyring %s: %w", path, err)
	}
	return keyring, nil
}

func loadSigner(path string) (*openpgp.Entity, error) {
	keyring, err := loadKeyring(path)
	if err != nil {
		return nil, err
	}
	for _, entity := range keyring {
		if entity.PrivateKey != nil && !entity.PrivateKey.Encrypted {
			return entity, nil
		}
	}
	return nil, fmt.Errorf("no usable signing key in %s", path)
}
