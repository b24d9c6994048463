package aelf

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// DerivationPath is the BIP44 path of node wallets (coin type 1616), formatted with the wallet index.
const DerivationPath = "m/44'/1616'/0'/0/%d"

// PrivateKeyFromMnemonic derives the hex private key of the wallet at index.
func PrivateKeyFromMnemonic(mnemonic string, index uint32) (string, error) {
	return DeriveHexKey(mnemonic, fmt.Sprintf(DerivationPath, index))
}

// DeriveHexKey derives the secp256k1 key at path from a BIP39 mnemonic.
func DeriveHexKey(mnemonic string, path string) (string, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return "", fmt.Errorf("invalid mnemonic: %w", err)
	}
	derivationPath, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return "", fmt.Errorf("invalid derivation path %s: %w", path, err)
	}
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("failed to create master key: %w", err)
	}
	for _, n := range derivationPath {
		if key, err = key.Derive(n); err != nil {
			return "", fmt.Errorf("failed to derive account: %w", err)
		}
	}
	privateKey, err := key.ECPrivKey()
	if err != nil {
		return "", fmt.Errorf("failed to get private key: %w", err)
	}
	return hex.EncodeToString(crypto.FromECDSA(privateKey.ToECDSA())), nil
}
