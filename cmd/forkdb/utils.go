// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/forkdb/log"
	"github.com/vechain/forkdb/lvldb"
	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/types"
)

func initLogger(ctx *cli.Context) {
	verbosity := ctx.GlobalInt(verbosityFlag.Name)
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.Init(os.Stderr, verbosity, useColor)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// fork is an opened remote backend along with its resources.
type fork struct {
	backend *remote.Backend
	fetcher *remote.RPCFetcher
	store   *lvldb.LevelDB
}

func (f *fork) Close() {
	f.fetcher.Close()
	if f.store != nil {
		if err := f.store.Close(); err != nil {
			log.Warn("failed to close cache store", "err", err)
		}
	}
}

func openFork(ctx context.Context, cfg *config) (*fork, error) {
	fetcher, err := remote.DialRPC(ctx, cfg.RPC)
	if err != nil {
		return nil, err
	}

	block := cfg.Block
	if block == 0 {
		if block, err = fetcher.LatestBlock(ctx); err != nil {
			fetcher.Close()
			return nil, errors.Wrap(err, "get latest block")
		}
	}

	opts := remote.Options{
		RequestTimeout:   cfg.RequestTimeout,
		CodeCacheSizeMB:  cfg.CodeCacheSizeMB,
		FetchConcurrency: cfg.FetchConcurrency,
	}
	f := &fork{fetcher: fetcher}
	if cfg.CacheDir == "" {
		f.backend = remote.New(ctx, fetcher, block, opts)
	} else {
		if f.store, err = lvldb.New(cfg.CacheDir, lvldb.Options{}); err != nil {
			fetcher.Close()
			return nil, err
		}
		if f.backend, err = remote.NewWithStore(ctx, fetcher, block, f.store, opts); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.backend.SetPinnedBlock(block); err != nil {
		f.Close()
		return nil, err
	}
	log.Info("forked", "rpc", cfg.RPC, "block", block)
	return f, nil
}

// readAddresses reads one address per line. Blank lines and lines starting with # are skipped.
func readAddresses(r io.Reader) ([]types.Address, error) {
	var (
		addrs   []types.Address
		scanner = bufio.NewScanner(r)
		line    int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		addr, err := types.ParseAddress(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		addrs = append(addrs, addr)
	}
	return addrs, scanner.Err()
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
