// Command trongrind searches for TRON addresses matching a scoring
// predicate by walking additive secp256k1 key offsets across every GPU
// device on the host in parallel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/trongrind/trongrind/internal/ui"
	"github.com/trongrind/trongrind/pkg/aggregator"
	"github.com/trongrind/trongrind/pkg/clcache"
	"github.com/trongrind/trongrind/pkg/dispatcher"
	"github.com/trongrind/trongrind/pkg/vanity"
)

const (
	version    = "0.1"
	outputFile = "wallet.txt"
	cacheDir   = "kernel-cache"
)

func main() {
	app := &cli.App{
		Name:    "trongrind",
		Usage:   "GPU-accelerated TRON vanity address search",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "publicKey", Aliases: []string{"z"}, Usage: "128-hex-char seed public key (auto-generated if omitted)"},
			&cli.BoolFlag{Name: "tron-repeat", Aliases: []string{"R"}, Usage: "score by longest run of repeated trailing characters"},
			&cli.BoolFlag{Name: "tron-sequential", Aliases: []string{"S"}, Usage: "score by longest monotonic trailing run"},
			&cli.StringFlag{Name: "tron-suffix", Aliases: []string{"T"}, Usage: "comma-separated suffix patterns, X=wildcard"},
			&cli.BoolFlag{Name: "tron-lucky", Aliases: []string{"L"}, Usage: "score against a fixed lucky-number set"},
			&cli.IntSliceFlag{Name: "skip", Aliases: []string{"s"}, Usage: "omit device index (repeatable)"},
			&cli.BoolFlag{Name: "no-cache", Aliases: []string{"n"}, Usage: "do not read or write the kernel binary cache"},
			&cli.Uint64Flag{Name: "work", Aliases: []string{"w"}, Value: 64, Usage: "local work size"},
			&cli.Uint64Flag{Name: "work-max", Aliases: []string{"W"}, Usage: "overall work size (default inverse-size * inverse-multiple)"},
			&cli.IntFlag{Name: "inverse-size", Aliases: []string{"i"}, Value: 255, Usage: "batched inversions per item"},
			&cli.IntFlag{Name: "inverse-multiple", Aliases: []string{"I"}, Value: 16384, Usage: "parallel work items"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ %v%s\n", ui.ColorRed, err, ui.ColorReset)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ui.ClearScreen()
	ui.PrintWelcomeBanner(version)

	mode, err := selectMode(c)
	if err != nil {
		return err
	}

	seed, generated, err := selectSeedKey(c)
	if err != nil {
		return err
	}
	if generated {
		keyHex, _ := seed.PrivateKeyHex()
		ui.PrintGeneratedSeedKey(seed.PublicKeyHex(), keyHex)
	}

	cfg := dispatcher.Config{
		SeedKey:         seed,
		Mode:            mode,
		Skip:            c.IntSlice("skip"),
		NoCache:         c.Bool("no-cache"),
		WorkLocal:       c.Uint64("work"),
		WorkMax:         c.Uint64("work-max"),
		InverseSize:     c.Int("inverse-size"),
		InverseMultiple: c.Int("inverse-multiple"),
	}

	cache := clcache.New(cacheDir)
	enumerator, builder, err := newBackendFactory(cache, cfg)
	if err != nil {
		return err
	}

	d, err := dispatcher.New(cfg, enumerator, builder)
	if err != nil {
		return err
	}
	ui.PrintDeviceList(d.Devices())

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	ui.PrintSearchInfo(mode, seed.PublicKeyHex())

	startTime := time.Now()
	hits, err := d.Run(ctx)
	if err != nil {
		cancel()
		return err
	}

	var found int
	for hit := range hits {
		found++
		address := vanity.CheckEncode(hit.Address[:])
		elapsed := time.Since(startTime)
		ui.PrintHit(address, hit, elapsed)
		if err := saveHit(address, hit, elapsed); err != nil {
			log.Warn("writing hit file failed", "err", err)
		}
	}

	signal.Stop(sigChan)
	return d.Err()
}

func selectMode(c *cli.Context) (vanity.Mode, error) {
	switch {
	case c.Bool("tron-repeat"):
		return vanity.TronRepeat(), nil
	case c.Bool("tron-sequential"):
		return vanity.TronSequential(), nil
	case c.String("tron-suffix") != "":
		spec := c.String("tron-suffix")
		if err := validateSuffixPatterns(spec); err != nil {
			return vanity.Mode{}, err
		}
		return vanity.TronSuffix(spec), nil
	case c.Bool("tron-lucky"):
		return vanity.TronLucky(), nil
	default:
		return vanity.Benchmark(), nil
	}
}

// validateSuffixPatterns rejects a -T/--tron-suffix spec containing
// characters outside the Base58 alphabet (X is the pattern wildcard and is
// itself a valid Base58 character, so it needs no special-casing) before
// it is packed into a Mode.
func validateSuffixPatterns(spec string) error {
	var invalid []rune
	for _, pattern := range strings.Split(spec, ",") {
		if pattern == "" {
			continue
		}
		invalid = append(invalid, vanity.InvalidBase58Chars(pattern)...)
	}
	if len(invalid) > 0 {
		return fmt.Errorf("tron-suffix: invalid base58 character(s) %q", string(invalid))
	}
	return nil
}

func selectSeedKey(c *cli.Context) (*vanity.SeedKey, bool, error) {
	if hexKey := c.String("publicKey"); hexKey != "" {
		seed, err := vanity.ParseSeedPublicKey(hexKey)
		return seed, false, err
	}
	seed, err := vanity.GenerateSeedKey()
	return seed, true, err
}

func saveHit(address string, hit aggregator.Hit, elapsed time.Duration) error {
	content := fmt.Sprintf(`TRON Vanity Address
====================

Address:     %s
Private Key: %s
Offset-only: %t

Statistics:
  Device:   %s
  Score:    %d
  Round:    %d
  Time:     %s

Generated: %s

WARNING: Keep this private key secret and secure!
`, address, hit.PrivateKeyHex, hit.OffsetOnly, hit.DeviceName, hit.Score, hit.Round, elapsed.Round(time.Millisecond), time.Now().Format("2006-01-02 15:04:05"))

	return os.WriteFile(outputFile, []byte(content), 0600)
}
