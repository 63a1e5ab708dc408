package txsubmit_test

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/txbuilder"
	"github.com/clearvault/vaultd/txsubmit"
)

func writeTestKey(t *testing.T, seed byte) string {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = seed
	}
	path := filepath.Join(t.TempDir(), "signer.key")
	require.NoError(t, os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600))
	return path
}

func TestPubkeyFromKeyFileIsDeterministic(t *testing.T) {
	path := writeTestKey(t, 7)

	pk1, err := txsubmit.PubkeyFromKeyFile(path)
	require.NoError(t, err)
	pk2, err := txsubmit.PubkeyFromKeyFile(path)
	require.NoError(t, err)
	require.Equal(t, pk1, pk2)
	require.NotEmpty(t, pk1)
}

func TestSignAndSubmitRoundTrip(t *testing.T) {
	cl := chain.NewFakeClient()
	sub := txsubmit.NewSubmitter(cl)
	keyPath := writeTestKey(t, 1)

	unsigned, err := txbuilder.BuildDeposit("owner1", "mint1", 100)
	require.NoError(t, err)
	unsignedEncoded, err := unsigned.Encode()
	require.NoError(t, err)

	signedEncoded, signature, err := sub.SignAndSubmit(context.Background(), unsignedEncoded, keyPath)
	require.NoError(t, err)
	require.NotEmpty(t, signedEncoded)
	require.NotEmpty(t, signature)
}

func TestSubmitSurfacesChainError(t *testing.T) {
	cl := chain.NewFakeClient()
	cl.SubmitErr = context.DeadlineExceeded
	sub := txsubmit.NewSubmitter(cl)
	keyPath := writeTestKey(t, 2)

	unsigned, err := txbuilder.BuildWithdraw("owner1", "mint1", 50)
	require.NoError(t, err)
	unsignedEncoded, err := unsigned.Encode()
	require.NoError(t, err)

	signedEncoded, _, err := sub.Sign(context.Background(), unsignedEncoded, keyPath)
	require.NoError(t, err)

	_, err = sub.Submit(context.Background(), signedEncoded)
	require.Error(t, err)
}
