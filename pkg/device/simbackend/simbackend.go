// Package simbackend is a pure-Go reference implementation of
// device.Backend. It performs the same additive secp256k1 walk and
// Keccak-256 hash a real OpenCL kernel pipeline would, entirely on the CPU,
// so the dispatcher, round driver and aggregator can be tested and
// benchmarked without GPU hardware — the same role the teacher's
// `!opencl`-tagged stub generators play, except this one actually computes
// results instead of refusing to run.
package simbackend

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/trongrind/trongrind/pkg/device"
	"github.com/trongrind/trongrind/pkg/vanity"
)

// maxResultsPerRound mirrors the fixed-capacity results buffer a real
// kernel writes into; a round producing more hits than this drops the
// excess without logging it, a non-fatal overflow as on the GPU path.
const maxResultsPerRound = 64

// Backend is a CPUBackend scoring candidates against a fixed Mode and seed
// public key. It is safe for concurrent EnqueueRound/CollectResults calls
// on different rounds, matching the two-rounds-in-flight round driver.
type Backend struct {
	mode    vanity.Mode
	seedPub *btcec.PublicKey
	workMax uint32

	mu      sync.Mutex
	results map[uint64][]device.RawResult
	closed  bool
}

// New builds a reference backend that scores workMax candidates per round,
// rooted at seedPub, against mode.
func New(mode vanity.Mode, seedPub *btcec.PublicKey, workMax uint32) *Backend {
	return &Backend{mode: mode, seedPub: seedPub, workMax: workMax, results: make(map[uint64][]device.RawResult)}
}

// EnqueueRound computes every candidate in the round synchronously. Real
// hardware would return immediately and let the command queue pipeline the
// work; the CPU reference has no queue to pipeline onto, so it does the
// work up front and CollectResults merely retrieves it.
func (b *Backend) EnqueueRound(ctx context.Context, round uint64, baseOffset uint256.Int, bestScore uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var out []device.RawResult
	for item := uint32(0); item < b.workMax; item++ {
		offset := new(uint256.Int).Add(&baseOffset, uint256.NewInt(uint64(item)))
		addr, err := b.candidateAddress(*offset)
		if err != nil {
			return err
		}

		score := score(b.mode, addr)
		if score <= bestScore {
			continue
		}
		out = append(out, device.RawResult{WorkItem: item, Score: score, Address: addr})
		if len(out) >= maxResultsPerRound {
			break
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.results[round] = out
	return nil
}

// CollectResults returns the round's precomputed results. After Shutdown it
// returns no results and no error.
func (b *Backend) CollectResults(ctx context.Context, round uint64) ([]device.RawResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	results, ok := b.results[round]
	if !ok && !b.closed {
		return nil, fmt.Errorf("simbackend: round %d was never enqueued", round)
	}
	return results, nil
}

// Shutdown releases the cached per-round results.
func (b *Backend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.results = nil
	return nil
}

// candidateAddress walks offset*G + seedPub and renders the resulting
// point's low 20 Keccak bytes, the same derivation device.RawResult.Address
// represents. Mirrors pkg/generator/bitcoin's taproot key-tweak pattern:
// ModNScalar + ScalarBaseMultNonConst + AddNonConst over Jacobian points.
func (b *Backend) candidateAddress(offset uint256.Int) ([20]byte, error) {
	var scalar btcec.ModNScalar
	buf := offset.Bytes32()
	scalar.SetBytes(&buf)

	var offsetPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&scalar, &offsetPoint)

	var seedPoint btcec.JacobianPoint
	b.seedPub.AsJacobian(&seedPoint)

	var sum btcec.JacobianPoint
	btcec.AddNonConst(&seedPoint, &offsetPoint, &sum)
	sum.ToAffine()

	candidatePub := btcec.NewPublicKey(&sum.X, &sum.Y)
	hash := crypto.Keccak256(candidatePub.SerializeUncompressed()[1:])

	var addr [20]byte
	copy(addr[:], hash[len(hash)-20:])
	return addr, nil
}

// score evaluates mode's scoring predicate against a raw 20-byte address.
// The real kernel arithmetic this approximates is out of scope (spec §1
// treats it as given); these rules are a reasonable, documented stand-in
// used only by the CPU reference backend, not by the GPU path.
func score(mode vanity.Mode, addr [20]byte) uint32 {
	switch mode.Kernel {
	case "profanity_score_benchmark":
		return 1
	case "profanity_score_range":
		return leadingNibblesInRange(addr, mode.Data1[0], mode.Data2[0])
	case "profanity_score_leading":
		return leadingNibblesInRange(addr, mode.Data1[0], mode.Data1[0])
	case "profanity_score_leadingrange":
		return leadingNibblesInRange(addr, mode.Data1[0], mode.Data2[0])
	case "profanity_score_matching":
		return matchingNibbles(addr, mode.Data1, mode.Data2)
	case "profanity_score_zerobytes":
		return leadingZeroBytes(addr)
	case "profanity_score_mirror":
		return mirrorScore(addr)
	case "profanity_score_doubles":
		return doublesScore(addr)
	case "profanity_score_letters":
		return leadingNibblesInRange(addr, 10, 15)
	case "profanity_score_numbers":
		return leadingNibblesInRange(addr, 0, 9)
	case "profanity_score_tron_repeat":
		return tronRepeatScore(addr)
	case "profanity_score_tron_sequential":
		return tronSequentialScore(addr)
	case "profanity_score_tron_lucky":
		return tronLuckyScore(addr)
	case "profanity_score_tron_suffix":
		return tronSuffixScore(addr, mode.Data1, mode.Data2)
	default:
		return 0
	}
}

func nibble(addr [20]byte, p int) byte {
	b := addr[p/2]
	if p%2 == 0 {
		return b >> 4
	}
	return b & 0xF
}

func leadingNibblesInRange(addr [20]byte, min, max byte) uint32 {
	var n uint32
	for p := 0; p < 40; p++ {
		v := nibble(addr, p)
		if v < min || v > max {
			break
		}
		n++
	}
	return n
}

func matchingNibbles(addr [20]byte, mask, value [20]byte) uint32 {
	var n uint32
	for p := 0; p < 40; p++ {
		byteIdx := p / 2
		var maskNibble, valNibble byte
		if p%2 == 0 {
			maskNibble = mask[byteIdx] >> 4
			valNibble = value[byteIdx] >> 4
		} else {
			maskNibble = mask[byteIdx] & 0xF
			valNibble = value[byteIdx] & 0xF
		}
		if maskNibble == 0 {
			continue
		}
		if nibble(addr, p) == valNibble {
			n++
		}
	}
	return n
}

func leadingZeroBytes(addr [20]byte) uint32 {
	var n uint32
	for _, b := range addr {
		if b != 0 {
			break
		}
		n++
	}
	return n
}

func mirrorScore(addr [20]byte) uint32 {
	var n uint32
	for p, q := 0, 39; p < q; p, q = p+1, q-1 {
		if nibble(addr, p) != nibble(addr, q) {
			break
		}
		n++
	}
	return n
}

func doublesScore(addr [20]byte) uint32 {
	var n uint32
	for p := 0; p+1 < 40; p += 2 {
		if nibble(addr, p) != nibble(addr, p+1) {
			break
		}
		n++
	}
	return n
}

// base58Address renders the low-20-byte payload as the TRON base58check
// string the suffix/repeat/sequential/lucky predicates operate on.
func base58Address(addr [20]byte) string {
	return vanity.CheckEncode(addr[:])
}

func tronRepeatScore(addr [20]byte) uint32 {
	s := base58Address(addr)
	if len(s) == 0 {
		return 0
	}
	var best, run uint32 = 1, 1
	for i := len(s) - 1; i > 0; i-- {
		if s[i] == s[i-1] {
			run++
		} else {
			break
		}
	}
	best = run
	return best
}

func tronSequentialScore(addr [20]byte) uint32 {
	s := base58Address(addr)
	if len(s) < 2 {
		return 0
	}
	step := int(s[len(s)-1]) - int(s[len(s)-2])
	if step != 1 && step != -1 {
		return 1
	}
	var run uint32 = 1
	for i := len(s) - 1; i > 0; i-- {
		if int(s[i])-int(s[i-1]) == step {
			run++
		} else {
			break
		}
	}
	return run
}

var tronLuckyPatterns = []string{"8888", "6666", "9999", "5200", "1314"}

func tronLuckyScore(addr [20]byte) uint32 {
	s := base58Address(addr)
	var best uint32
	for _, p := range tronLuckyPatterns {
		if len(s) >= len(p) && s[len(s)-len(p):] == p {
			if uint32(len(p)) > best {
				best = uint32(len(p))
			}
		}
	}
	return best
}

// tronSuffixScore checks the tail of the address against every NUL-packed
// pattern in data1 (X = wildcard byte), scoring the longest match.
func tronSuffixScore(addr [20]byte, data1, data2 [20]byte) uint32 {
	s := base58Address(addr)
	total := int(data2[0])
	patterns := splitPacked(data1[:total])

	var best uint32
	for _, p := range patterns {
		if len(p) == 0 || len(p) > len(s) {
			continue
		}
		tail := s[len(s)-len(p):]
		if matchesWithWildcard(tail, p) && uint32(len(p)) > best {
			best = uint32(len(p))
		}
	}
	return best
}

func matchesWithWildcard(s, pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == 'X' {
			continue
		}
		if pattern[i] != s[i] {
			return false
		}
	}
	return true
}

func splitPacked(b []byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == 0 {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	return out
}
