package aelf_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/scalarorg/crosschain-relayer/pkg/clients/aelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeriveHexKeyKnownVector(t *testing.T) {
	privateKey, err := aelf.DeriveHexKey(testMnemonic, "m/44'/60'/0'/0/0")
	require.NoError(t, err)
	key, err := crypto.HexToECDSA(privateKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94"), crypto.PubkeyToAddress(key.PublicKey))
}

func TestPrivateKeyFromMnemonicUsesWalletIndex(t *testing.T) {
	first, err := aelf.PrivateKeyFromMnemonic(testMnemonic, 0)
	require.NoError(t, err)
	again, err := aelf.PrivateKeyFromMnemonic(testMnemonic, 0)
	require.NoError(t, err)
	second, err := aelf.PrivateKeyFromMnemonic(testMnemonic, 1)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, second)
	assert.Len(t, first, 64)

	ethereumPath, err := aelf.DeriveHexKey(testMnemonic, "m/44'/60'/0'/0/0")
	require.NoError(t, err)
	assert.NotEqual(t, ethereumPath, first)
}

func TestDeriveHexKeyRejectsBadInput(t *testing.T) {
	_, err := aelf.PrivateKeyFromMnemonic("abandon abandon abandon", 0)
	require.Error(t, err)
	_, err = aelf.DeriveHexKey(testMnemonic, "m/not/a/path")
	require.Error(t, err)
}
