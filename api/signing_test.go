package api

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func testOrderArgs(t *testing.T) OrderArgs {
	t.Helper()
	key, err := crypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	return OrderArgs{
		Maker:      crypto.PubkeyToAddress(key.PublicKey),
		TokenID:    "71321045679252212594626385532706912750332728571942532289631379312455583992563",
		Size:       12.5,
		Price:      0.47,
		Nonce:      1700000000123,
		Expiration: 1700003600,
	}
}

func TestHashOrderDeterministic(t *testing.T) {
	args := testOrderArgs(t)

	h1, err := HashOrder(args)
	if err != nil {
		t.Fatalf("HashOrder: %v", err)
	}
	h2, err := HashOrder(args)
	if err != nil {
		t.Fatalf("HashOrder: %v", err)
	}
	if !bytes.Equal(h1, h2) {
		t.Error("same args must hash identically")
	}
	if len(h1) != 32 {
		t.Errorf("hash length = %d, want 32", len(h1))
	}

	// Any field change must change the hash
	changed := args
	changed.Nonce++
	h3, err := HashOrder(changed)
	if err != nil {
		t.Fatalf("HashOrder: %v", err)
	}
	if bytes.Equal(h1, h3) {
		t.Error("nonce change must change the hash")
	}
}

func TestHashOrderHexTokenID(t *testing.T) {
	args := testOrderArgs(t)
	args.TokenID = "0x1a2b3c"
	if _, err := HashOrder(args); err != nil {
		t.Errorf("hex token id should be accepted: %v", err)
	}

	args.TokenID = "not-a-number"
	if _, err := HashOrder(args); err == nil {
		t.Error("expected error for malformed token id")
	}

	args.TokenID = ""
	if _, err := HashOrder(args); err == nil {
		t.Error("expected error for empty token id")
	}
}

func TestSignOrderHashRecoversSigner(t *testing.T) {
	key, err := crypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	hash, err := HashOrder(testOrderArgs(t))
	if err != nil {
		t.Fatalf("HashOrder: %v", err)
	}

	sigHex, err := SignOrderHash(hash, key)
	if err != nil {
		t.Fatalf("SignOrderHash: %v", err)
	}

	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}
	if sig[64] != 27 && sig[64] != 28 {
		t.Errorf("v = %d, want 27 or 28", sig[64])
	}

	// Undo the Ethereum v offset and recover the signer
	sig[64] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash(hash), sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got := crypto.PubkeyToAddress(*pub); got != want {
		t.Errorf("recovered %s, want %s", got.Hex(), want.Hex())
	}
}
