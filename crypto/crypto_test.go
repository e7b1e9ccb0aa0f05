package crypto

import (
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestSignAndRecoverAddress(t *testing.T) {
	privateKeyHex := "6a6594b9673a8c8987113327a93bf4a216d6cbe53e5f31bbaa8c5228a1664591"
	privateKey, err := ethcrypto.HexToECDSA(privateKeyHex)
	if err != nil {
		t.Fatal(err)
	}
	expected := ethcrypto.PubkeyToAddress(privateKey.PublicKey)

	data := []byte("foobar")
	sig := SignData(data, privateKey)

	recovered, err := RecoverAddress(data, sig.Raw)
	if err != nil {
		t.Fatal(err)
	}
	if recovered != expected {
		t.Fatalf("recovered %v, expected %v", recovered, expected)
	}
	if !VerifyDataWithAddress(data, sig.Raw, expected) {
		t.Fatal("signature should verify against the signer address")
	}
}

func TestRecoverAddressRejectsTamperedData(t *testing.T) {
	privateKey, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	expected := ethcrypto.PubkeyToAddress(privateKey.PublicKey)

	sig := SignData([]byte("original"), privateKey)
	if VerifyDataWithAddress([]byte("tampered"), sig.Raw, expected) {
		t.Fatal("signature over different data must not verify")
	}
}

func TestRecoverAddressRejectsShortSignature(t *testing.T) {
	if _, err := RecoverAddress([]byte("data"), []byte{0x01, 0x02}); err == nil {
		t.Fatal("short signature should be rejected")
	}
}
