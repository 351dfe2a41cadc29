// Copyright (c) 2024 The Flokicoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command coinnoded wires together the block-tree, mempool, miner, and
// wallet packages into a single process. It carries no consensus logic of
// its own: every rule lives in blockchain, mempool, and mining. This binary
// only parses flags, restores a snapshot if one exists, optionally runs the
// miner loop, and exposes /metrics.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/coinnode/node/blockchain"
	"github.com/coinnode/node/chaincfg"
	"github.com/coinnode/node/chainutil"
	"github.com/coinnode/node/log"
	"github.com/coinnode/node/mempool"
	"github.com/coinnode/node/metrics"
	"github.com/coinnode/node/mining"
	"github.com/coinnode/node/snapshot"
	"github.com/coinnode/node/wallet"
	"github.com/jrick/logrotate/rotator"
)

const version = "0.1.0"

var coinnodeLog log.Logger = log.Disabled

// wireSubsystemLoggers gives each package its own tagged Logger backed by
// the same Backend, via each package's own UseLogger hook.
func wireSubsystemLoggers(backend *log.Backend, lvl log.Level) {
	for tag, use := range map[string]func(log.Logger){
		"BLKC": blockchain.UseLogger,
		"MEMP": mempool.UseLogger,
		"MINR": mining.UseLogger,
	} {
		l := backend.Subsystem(tag)
		l.SetLevel(lvl)
		use(l)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	backend, closer, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	coinnodeLog = backend.Subsystem("MAIN")
	lvl := log.LevelFromString(cfg.LogLevel)
	coinnodeLog.SetLevel(lvl)
	wireSubsystemLoggers(backend, lvl)

	params := cfg.params()

	chain, pool, err := loadOrInit(cfg, params)
	if err != nil {
		return err
	}

	w := wallet.New(chain)
	if len(w.Addresses()) == 0 {
		addr, err := w.GenerateAddress()
		if err != nil {
			return err
		}
		coinnodeLog.Infof("generated payout address %s", addr.EncodeAddress())
	}

	coinnodeLog.Infof("coinnoded %s starting, network=%s, height=%d",
		version, params.Name, chain.BestHeight())

	ctx, stop := signalContext()
	defer stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	if cfg.Mine {
		go mineLoop(ctx, chain, pool, w, params)
	}

	<-ctx.Done()
	coinnodeLog.Infof("shutting down, saving snapshot to %s", cfg.snapshotPath())
	return saveSnapshot(cfg, chain, pool)
}

// loadOrInit restores a prior snapshot if one exists at cfg's configured
// path, otherwise starts a fresh chain rooted at params' genesis block.
func loadOrInit(cfg *config, params *chaincfg.Params) (*blockchain.BlockChain, *mempool.TxPool, error) {
	if snap, err := snapshot.LoadFromFile(cfg.snapshotPath()); err == nil {
		return snapshot.Restore(params, snap)
	}
	pool := mempool.New()
	chain, err := blockchain.New(params, pool)
	if err != nil {
		return nil, nil, err
	}
	return chain, pool, nil
}

func saveSnapshot(cfg *config, chain *blockchain.BlockChain, pool *mempool.TxPool) error {
	snap, err := snapshot.Capture(chain, pool)
	if err != nil {
		return err
	}
	return snapshot.SaveToFile(cfg.snapshotPath(), snap)
}

// mineLoop repeatedly assembles a template against the current best tip and
// mines it, submitting any found block back to the chain. It exits when ctx
// is cancelled, honoring the miner's own cooperative cancellation via Stop.
func mineLoop(ctx stopper, chain *blockchain.BlockChain, pool *mempool.TxPool, w *wallet.Wallet, params *chaincfg.Params) {
	addrs := w.Addresses()
	if len(addrs) == 0 {
		coinnodeLog.Errorf("mining requested but wallet has no payout address")
		return
	}
	payoutScript, err := payoutScriptFor(addrs[0])
	if err != nil {
		coinnodeLog.Errorf("resolving payout script: %v", err)
		return
	}

	miner := mining.New(params, pool)
	go func() {
		<-ctx.Done()
		miner.Stop()
	}()

	var extraNonce uint64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		tip := chain.BestChainTip()
		height, _ := chain.HeightOf(tip)
		bits, err := chain.NextRequiredBits(tip)
		if err != nil {
			coinnodeLog.Errorf("computing next difficulty: %v", err)
			return
		}

		tmpl := miner.AssembleTemplate(tip, height, bits, payoutScript, extraNonce, 2000)
		block, err := miner.Mine(tmpl, false)
		if err != nil {
			continue // cancelled or exhausted; reassemble against the (possibly unchanged) tip
		}

		if err := chain.AddBlock(block); err != nil {
			coinnodeLog.Warnf("mined block rejected: %v", err)
			metrics.BlocksRejected.WithLabelValues("own-block").Inc()
			continue
		}

		metrics.MinerBlocksFound.Inc()
		metrics.BlocksAccepted.Inc()
		coinnodeLog.Infof("mined block at height %d", tmpl.Height)
		extraNonce++
	}
}

// payoutScriptFor resolves address into the pay-to-pubkey-hash script the
// miner should embed in its coinbase output.
func payoutScriptFor(address string) ([]byte, error) {
	addr, err := chainutil.DecodeAddress(address)
	if err != nil {
		return nil, err
	}
	return chainutil.PayToAddrScript(addr), nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		coinnodeLog.Errorf("metrics server: %v", err)
	}
}

func setupLogging(cfg *config) (*log.Backend, io.Closer, error) {
	if cfg.LogFile == "" {
		return log.NewDefaultBackend(), nil, nil
	}

	r, err := rotator.New(cfg.LogFile, 10*1024, false, 3)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing log rotator: %w", err)
	}
	return log.NewBackend(io.MultiWriter(os.Stdout, r)), r, nil
}

// stopper is the subset of context.Context this file needs; kept minimal
// since no deadline or value propagation is required.
type stopper interface {
	Done() <-chan struct{}
}

func signalContext() (stopper, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-ch
		close(done)
	}()
	return doneChan(done), func() { signal.Stop(ch) }
}

type doneChan chan struct{}

func (d doneChan) Done() <-chan struct{} { return d }
