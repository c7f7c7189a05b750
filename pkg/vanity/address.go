package vanity

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
	mrtronbase58 "github.com/mr-tron/base58"
)

// MainnetPrefix is the leading byte of every TRON address (0x41), prepended
// before the 20-byte Keccak digest and the Base58Check checksum.
const MainnetPrefix = 0x41

// DeriveAddress renders an uncompressed secp256k1 public key (with its
// leading 0x04 byte) as a TRON address: Base58Check(0x41 || last 20 bytes of
// Keccak256(pubKey[1:])).
func DeriveAddress(pubKeyBytes []byte) string {
	hash := crypto.Keccak256(pubKeyBytes[1:])
	return CheckEncode(hash[len(hash)-20:])
}

// CheckEncode renders a bare 20-byte TRON address payload as Base58Check
// text using mr-tron/base58, the primary encoder every live address — hit
// reporting, the reference backend — renders through.
func CheckEncode(address20 []byte) string {
	data := make([]byte, 21)
	data[0] = MainnetPrefix
	copy(data[1:], address20)
	return checkEncode(data)
}

// checkEncode appends a 4-byte double-SHA256 checksum and Base58-encodes the
// result using mr-tron/base58, the library the dispatcher's hot path uses.
func checkEncode(data []byte) string {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])

	full := make([]byte, 0, len(data)+4)
	full = append(full, data...)
	full = append(full, second[:4]...)

	return mrtronbase58.Encode(full)
}

// CheckEncodeReference re-derives the same Base58Check string via
// btcsuite/btcd's codec, given the bare 20-byte address (no 0x41 prefix).
// Nothing on the live address-rendering path calls this; it exists so tests
// can cross-check CheckEncode's output against a second, independently
// maintained implementation.
func CheckEncodeReference(address20 []byte) string {
	return base58.CheckEncode(address20, MainnetPrefix)
}

// PrivateKeyToHex renders a raw private-key scalar as lowercase hex.
func PrivateKeyToHex(privKeyBytes []byte) string {
	const hextable = "0123456789abcdef"
	result := make([]byte, len(privKeyBytes)*2)
	for i, v := range privKeyBytes {
		result[i*2] = hextable[v>>4]
		result[i*2+1] = hextable[v&0x0f]
	}
	return string(result)
}
