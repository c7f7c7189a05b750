package vanity

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/trongrind/trongrind/pkg/clstatus"
)

// seedPublicKeyHexLen is the only accepted length for -z/--publicKey: 64
// bytes (X||Y, no 0x04 prefix) as hex.
const seedPublicKeyHexLen = 128

// SeedKey is the elliptic-curve key pair a search is rooted at. Priv is nil
// unless this process generated the key itself (§4.4 point 3).
type SeedKey struct {
	Pub  *btcec.PublicKey
	Priv *btcec.PrivateKey
}

// ParseSeedPublicKey validates and decodes a 128-hex-char uncompressed
// secp256k1 public key (X||Y, no 0x04 prefix). Lengths other than 128 and
// points off the curve are rejected with ErrBadSeedKey.
func ParseSeedPublicKey(hexKey string) (*SeedKey, error) {
	if len(hexKey) != seedPublicKeyHexLen {
		return nil, fmt.Errorf("%w: want %d hex chars, got %d", clstatus.ErrBadSeedKey, seedPublicKeyHexLen, len(hexKey))
	}

	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clstatus.ErrBadSeedKey, err)
	}

	uncompressed := make([]byte, 0, 65)
	uncompressed = append(uncompressed, 0x04)
	uncompressed = append(uncompressed, raw...)

	pub, err := btcec.ParsePubKey(uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: point not on curve: %v", clstatus.ErrBadSeedKey, err)
	}

	return &SeedKey{Pub: pub}, nil
}

// GenerateSeedKey produces a fresh random key pair, used when -z/--publicKey
// is omitted (§4.4 point 3, supplemented from original_source's
// auto-generation path).
func GenerateSeedKey() (*SeedKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating seed key: %w", err)
	}
	return &SeedKey{Pub: priv.PubKey(), Priv: priv}, nil
}

// PublicKeyHex renders the seed public key in the 128-hex-char X||Y form
// ParseSeedPublicKey accepts.
func (s *SeedKey) PublicKeyHex() string {
	uncompressed := s.Pub.SerializeUncompressed()
	return hex.EncodeToString(uncompressed[1:])
}

// PrivateKeyHex returns the seed's private scalar as 64 hex chars, if this
// process generated it.
func (s *SeedKey) PrivateKeyHex() (string, bool) {
	if s.Priv == nil {
		return "", false
	}
	buf := s.Priv.Serialize()
	return hex.EncodeToString(buf), true
}
