// Package aggregator implements the wait-free best-score tracker and the
// single-attempt compare-and-swap protocol every device round driver uses
// to decide whether a candidate is worth reporting.
package aggregator

import (
	"math/big"
	"sync/atomic"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/holiman/uint256"

	"github.com/trongrind/trongrind/pkg/vanity"
)

// BestScore is the score every device round driver races to beat. Its
// CompareAndSwap is the only synchronization point between devices: no
// locks, no retry loop on a failed swap.
type BestScore struct {
	v atomic.Uint32
}

// NewBestScore returns a tracker seeded at floor (0 admits any score).
func NewBestScore(floor uint32) *BestScore {
	b := &BestScore{}
	b.v.Store(floor)
	return b
}

// Load returns the current best score.
func (b *BestScore) Load() uint32 { return b.v.Load() }

// CompareAndSwap attempts to install newScore as the best score. It
// succeeds only if newScore is strictly greater than the value read at the
// start of the call; a concurrent winner racing in between causes this to
// fail, which the caller must treat as a rejection, not retry.
func (b *BestScore) CompareAndSwap(newScore uint32) bool {
	old := b.v.Load()
	if newScore <= old {
		return false
	}
	return b.v.CompareAndSwap(old, newScore)
}

// Candidate is a scored result a round driver has decided is worth
// submitting, carrying enough information to reconstruct the exact private
// key that produced it.
type Candidate struct {
	Score      uint32
	Address    [20]byte
	Offset     uint256.Int
	DeviceName string
	Round      uint64
}

// Hit is a Candidate the aggregator accepted: its score beat every prior
// candidate at submission time.
type Hit struct {
	Candidate
	// PrivateKeyHex is the 0x-prefixed, 64-hex-char private key scalar when
	// the seed's private scalar was known, or the raw offset hex otherwise
	// (spec §4.4 point 3: the caller must add it to their own key by hand).
	PrivateKeyHex string
	// OffsetOnly reports whether PrivateKeyHex is an offset rather than a
	// usable private key, because the seed key was given as a public key
	// the caller already controls.
	OffsetOnly bool
}

// Aggregator owns the shared BestScore and the seed key used to turn an
// accepted candidate's offset into a usable private key.
type Aggregator struct {
	best *BestScore
	seed *vanity.SeedKey
}

// New builds an Aggregator over the given BestScore and seed key.
func New(best *BestScore, seed *vanity.SeedKey) *Aggregator {
	return &Aggregator{best: best, seed: seed}
}

// Submit runs the four-step acceptance protocol: read the current best,
// reject if c does not beat it, attempt a single CAS, and on success derive
// the private key. A failed CAS (another device won the race) is a
// rejection like any other — Submit never retries.
func (a *Aggregator) Submit(c Candidate) (Hit, bool) {
	if c.Score <= a.best.Load() {
		return Hit{}, false
	}
	if !a.best.CompareAndSwap(c.Score) {
		return Hit{}, false
	}

	keyHex, offsetOnly := a.derivePrivateKey(c.Offset)
	return Hit{Candidate: c, PrivateKeyHex: keyHex, OffsetOnly: offsetOnly}, true
}

// derivePrivateKey adds offset to the seed's private scalar mod the curve
// order, when the seed scalar is known. Otherwise it returns the bare
// offset, which the caller is responsible for combining with their own key.
func (a *Aggregator) derivePrivateKey(offset uint256.Int) (string, bool) {
	if a.seed == nil || a.seed.Priv == nil {
		return offsetHex(offset), true
	}

	n := btcec.S256().N
	scalar := new(big.Int).SetBytes(a.seed.Priv.Serialize())
	off := offset.ToBig()
	sum := new(big.Int).Add(scalar, off)
	sum.Mod(sum, n)

	buf := sum.FillBytes(make([]byte, 32))
	return "0x" + vanity.PrivateKeyToHex(buf), false
}

func offsetHex(offset uint256.Int) string {
	buf := offset.Bytes32()
	return "0x" + vanity.PrivateKeyToHex(buf[:])
}
