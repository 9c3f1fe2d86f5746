package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrSignatureMismatch is returned when the signer is not the claimed address
var ErrSignatureMismatch = errors.New("signature does not match address")

// ChallengeMessage is the text a wallet signs to connect
func ChallengeMessage(address, nonce string) string {
	return fmt.Sprintf("Sign in to mint a video NFT\n\nAddress: %s\nNonce: %s", address, nonce)
}

// VerifySignature checks an EIP-191 personal_sign signature over message
func VerifySignature(address, message, signature string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid wallet address %q", address)
	}

	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length %d", len(sig))
	}
	// wallets report v as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", err)
	}
	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(address) {
		return ErrSignatureMismatch
	}
	return nil
}
