// Package txsubmit signs unsigned transactions produced by txbuilder with a
// named key file and submits them to the chain, waiting for confirmation.
// Signing and submission are modeled as a small state machine — Built,
// Signed, Submitted — since a failure at either step leaves the caller with
// a different, still-useful artifact (see spec.md §9): a signing failure
// leaves the journal entry pending with nothing to show; a submission
// failure leaves a signed transaction and signature the caller can
// resubmit later.
package txsubmit

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/txbuilder"
)

// SignedTransaction is an UnsignedTransaction bound to a blockhash and
// signed by the operation's designated signer.
type SignedTransaction struct {
	txbuilder.UnsignedTransaction
	Blockhash    string `json:"blockhash"`
	SignerPubkey string `json:"signer_pubkey"`
	Signature    string `json:"signature"`
}

func (tx *SignedTransaction) encode() (string, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeSignedTransaction reverses encode, used by Submit to check that the
// bytes it was given are a signed transaction and to name the operation in
// its log lines.
func decodeSignedTransaction(encoded string) (*SignedTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var tx SignedTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Submitter signs and submits transactions on behalf of the Vault Manager.
type Submitter struct {
	chainClient chain.Client
}

// NewSubmitter builds a Submitter around chainClient, used both to fetch a
// fresh blockhash before signing and to submit the signed bytes.
func NewSubmitter(chainClient chain.Client) *Submitter {
	return &Submitter{chainClient: chainClient}
}

// signingMessage is the byte sequence the signer actually signs: the
// instruction bytes bound to the blockhash that will accompany the
// transaction, so a stale signature can never be replayed against a
// different blockhash.
func signingMessage(instruction []byte, blockhash string) [32]byte {
	h := sha256.New()
	h.Write(instruction)
	h.Write([]byte(blockhash))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Sign loads the key at keyFilePath, refreshes the blockhash (mandatory on
// every sign, since the builder's unsigned transaction is always stale),
// re-binds it to the transaction, and signs. Both the key read and the
// blockhash fetch are I/O, so Sign is meant to be called from the
// blocking-work pool, matching spec.md §4.4/§5.
func (s *Submitter) Sign(ctx context.Context, unsignedTxBase64, keyFilePath string) (string, string, error) {
	unsigned, err := txbuilder.DecodeUnsignedTransaction(unsignedTxBase64)
	if err != nil {
		return "", "", fmt.Errorf("unable to decode unsigned transaction: %w", err)
	}

	priv, err := loadSigningKey(keyFilePath)
	if err != nil {
		return "", "", err
	}

	blockhash, err := s.chainClient.GetRecentBlockhash(ctx)
	if err != nil {
		return "", "", fmt.Errorf("unable to refresh blockhash: %w", err)
	}

	msg := signingMessage(unsigned.Instruction, blockhash)
	sig := ecdsa.Sign(priv, msg[:])
	sigHex := hex.EncodeToString(sig.Serialize())

	signed := &SignedTransaction{
		UnsignedTransaction: *unsigned,
		Blockhash:           blockhash,
		SignerPubkey:        hex.EncodeToString(priv.PubKey().SerializeCompressed()),
		Signature:           sigHex,
	}

	encoded, err := signed.encode()
	if err != nil {
		return "", "", err
	}

	log.Debugf("signed %s transaction, blockhash=%s", unsigned.Operation, blockhash)
	return encoded, sigHex, nil
}

// Submit submits signed transaction bytes and waits for chain confirmation,
// returning the chain signature (not the locally-computed signing
// signature — this is the network-assigned transaction signature).
func (s *Submitter) Submit(ctx context.Context, signedTxBase64 string) (string, error) {
	signed, err := decodeSignedTransaction(signedTxBase64)
	if err != nil {
		return "", fmt.Errorf("unable to decode signed transaction: %w", err)
	}

	signature, err := s.chainClient.SubmitTransaction(ctx, signedTxBase64)
	if err != nil {
		return "", fmt.Errorf("unable to submit transaction: %w", err)
	}

	confirmed, err := s.chainClient.IsConfirmed(ctx, signature)
	if err != nil {
		return "", fmt.Errorf("unable to confirm transaction: %w", err)
	}
	if !confirmed {
		log.Warnf("%s transaction %s submitted but not yet confirmed", signed.Operation, signature)
	}

	log.Infof("submitted %s transaction, signature=%s", signed.Operation, signature)
	return signature, nil
}

// SignAndSubmit composes Sign and Submit, the common case where the caller
// supplied a signer key path up front.
func (s *Submitter) SignAndSubmit(ctx context.Context, unsignedTxBase64, keyFilePath string) (signedTxBase64, signature string, err error) {
	signedTxBase64, _, err = s.Sign(ctx, unsignedTxBase64, keyFilePath)
	if err != nil {
		return "", "", err
	}

	signature, err = s.Submit(ctx, signedTxBase64)
	if err != nil {
		return signedTxBase64, "", err
	}

	return signedTxBase64, signature, nil
}
