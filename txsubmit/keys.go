package txsubmit

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// loadSigningKey reads a private key from path, expanding a leading "~/"
// to the user's home directory. Keys are read from disk on every
// operation (no in-memory cache), so rotating the file on disk takes
// effect on the very next signing call, per spec.md §5 and §9.
//
// The key file holds the raw 32-byte private key scalar, hex-encoded.
func loadSigningKey(path string) (*secp256k1.PrivateKey, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("unable to read signer key file %s: %w", expanded, err)
	}

	keyHex := strings.TrimSpace(string(raw))
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("signer key file %s is not valid hex: %w", expanded, err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf(
			"signer key file %s holds %d bytes, want 32", expanded, len(keyBytes),
		)
	}

	priv := secp256k1.PrivKeyFromBytes(keyBytes)
	return priv, nil
}

// PubkeyFromKeyFile loads the key at path and returns its hex-encoded
// compressed public key, with no caching, same as signing itself. The
// Vault Manager uses this to populate an instruction's signer account
// metadata before the transaction is built, since the signer's identity
// for lock/unlock/transfer operations is only known once its key file is
// read.
func PubkeyFromKeyFile(path string) (string, error) {
	priv, err := loadSigningKey(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(priv.PubKey().SerializeCompressed()), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to expand home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
