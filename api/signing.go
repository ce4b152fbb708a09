package api

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// OrderArgs are the fields bound into a replica order's signing hash.
type OrderArgs struct {
	Maker      common.Address
	TokenID    string
	Size       float64
	Price      float64
	Nonce      int64
	Expiration int64
}

// HashOrder builds the deterministic order hash: keccak256 over the
// abi-style encoding of (maker, tokenID, size*1e6, price*1e6, nonce,
// expiration), with size and price truncated to integer base units.
//
// This is a simplified signing contract, not the exchange's EIP-712
// typed order protocol; it is isolated here so it can be swapped for
// the real scheme without touching the executor.
func HashOrder(args OrderArgs) ([]byte, error) {
	token, err := parseTokenID(args.TokenID)
	if err != nil {
		return nil, err
	}

	words := []*big.Int{
		new(big.Int).SetBytes(args.Maker.Bytes()),
		token,
		big.NewInt(int64(args.Size * 1e6)),
		big.NewInt(int64(args.Price * 1e6)),
		big.NewInt(args.Nonce),
		big.NewInt(args.Expiration),
	}

	encoded := make([]byte, 0, 32*len(words))
	for _, w := range words {
		encoded = append(encoded, common.LeftPadBytes(w.Bytes(), 32)...)
	}

	return crypto.Keccak256(encoded), nil
}

// SignOrderHash signs the canonical personal-message form of an order
// hash and returns a 65-byte hex signature with the Ethereum v offset.
func SignOrderHash(hash []byte, key *ecdsa.PrivateKey) (string, error) {
	digest := accounts.TextHash(hash)

	signature, err := crypto.Sign(digest, key)
	if err != nil {
		return "", fmt.Errorf("sign order hash: %w", err)
	}
	signature[64] += 27

	return hexutil.Encode(signature), nil
}

// parseTokenID interprets a market/token identifier as an integer:
// hex when 0x-prefixed, decimal otherwise.
func parseTokenID(tokenID string) (*big.Int, error) {
	s := strings.TrimSpace(tokenID)
	if s == "" {
		return nil, fmt.Errorf("empty token id")
	}

	token := new(big.Int)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if _, ok := token.SetString(s[2:], 16); !ok {
			return nil, fmt.Errorf("invalid hex token id %q", tokenID)
		}
		return token, nil
	}
	if _, ok := token.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid token id %q", tokenID)
	}
	return token, nil
}
