package crypto

import (
	"crypto/ecdsa"
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
)

// Signature is a recoverable secp256k1 signature over the Keccak-256 digest
// of the signed payload.
type Signature struct {
	Raw  []byte
	Hash [32]byte
}

func bytes32(bytes []byte) [32]byte {
	tmp := [32]byte{}
	copy(tmp[:], bytes)
	return tmp
}

// SignData signs the Keccak-256 digest of data with the given key.
func SignData(data []byte, ecdsaKey *ecdsa.PrivateKey) Signature {
	hashRaw := ethcrypto.Keccak256(data)
	signature, err := ethcrypto.Sign(hashRaw, ecdsaKey)
	if err != nil {
		log.WithError(err).Fatal("could not sign data")
	}

	return Signature{
		Raw:  signature,
		Hash: bytes32(hashRaw),
	}
}

// RecoverAddress returns the address whose key produced the given
// recoverable signature over data. The returned identity is what the caller
// claims to be; comparing it against stored state is up to the caller.
func RecoverAddress(data []byte, signature []byte) (ethcommon.Address, error) {
	if len(signature) != ethcrypto.SignatureLength {
		return ethcommon.Address{}, errors.New("signature has invalid length")
	}
	hashRaw := ethcrypto.Keccak256(data)
	pubKey, err := ethcrypto.SigToPub(hashRaw, signature)
	if err != nil {
		return ethcommon.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// VerifyDataWithAddress reports whether signature over data recovers to the
// expected address.
func VerifyDataWithAddress(data []byte, signature []byte, expected ethcommon.Address) bool {
	recovered, err := RecoverAddress(data, signature)
	if err != nil {
		return false
	}
	return recovered == expected
}
