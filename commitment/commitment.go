// Package commitment implements the hiding commitment scheme for hidden
// amounts. A commitment binds (owner, amount, salt) into a fixed-size digest
// without revealing the amount until owner and salt are disclosed for
// verification. The scheme is pure: nothing is persisted, every call is
// self-contained.
//
// Canonical encoding, fixed so independently built clients can reproduce
// commitments byte for byte:
//
//	owner  20 bytes
//	amount 16 bytes, big-endian two's complement (signed 128-bit)
//	salt   remaining bytes, caller supplied
//
// All fields before the salt are fixed width, so no two distinct tuples
// serialize identically. The digest is Keccak-256 of the encoding.
package commitment

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"

	eth "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Size is the digest length in bytes.
const Size = 32

const amountWidth = 16

type Digest [Size]byte

var ErrAmountRange = errors.New("amount out of signed 128-bit range")

var (
	amountMax = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	amountMin = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)
)

func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func DigestFromHex(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, err
	}
	if len(raw) != Size {
		return d, errors.New("digest has invalid length")
	}
	copy(d[:], raw)
	return d, nil
}

// Create returns the commitment digest for (owner, amount, salt). Same
// inputs always yield the same digest. A nil amount is treated as zero.
func Create(owner eth.Address, amount *big.Int, salt []byte) (Digest, error) {
	var d Digest
	encoded, err := encode(owner, amount, salt)
	if err != nil {
		return d, err
	}
	copy(d[:], ethcrypto.Keccak256(encoded))
	return d, nil
}

// Verify recomputes the digest from the claimed inputs and compares byte for
// byte. A mismatch is an expected outcome, not an error: wrong amount, wrong
// salt, wrong owner and out-of-range amounts all report false.
func Verify(digest Digest, owner eth.Address, amount *big.Int, salt []byte) bool {
	recomputed, err := Create(owner, amount, salt)
	if err != nil {
		return false
	}
	return bytes.Equal(digest[:], recomputed[:])
}

func encode(owner eth.Address, amount *big.Int, salt []byte) ([]byte, error) {
	amountEnc, err := amountBytes(amount)
	if err != nil {
		return nil, err
	}
	encoded := make([]byte, 0, len(owner)+amountWidth+len(salt))
	encoded = append(encoded, owner[:]...)
	encoded = append(encoded, amountEnc[:]...)
	encoded = append(encoded, salt...)
	return encoded, nil
}

func amountBytes(amount *big.Int) ([amountWidth]byte, error) {
	var out [amountWidth]byte
	if amount == nil {
		return out, nil
	}
	if amount.Cmp(amountMax) > 0 || amount.Cmp(amountMin) < 0 {
		return out, ErrAmountRange
	}
	v := amount
	if amount.Sign() < 0 {
		v = new(big.Int).Add(twoPow128, amount)
	}
	v.FillBytes(out[:])
	return out, nil
}
