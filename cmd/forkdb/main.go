// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/forkdb/forkdb"
	"github.com/vechain/forkdb/log"
	"github.com/vechain/forkdb/metrics"
	"github.com/vechain/forkdb/remote"
	"github.com/vechain/forkdb/types"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

const warmBatchSize = 64

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "forkdb",
		Usage:   "Query and cache the state of a remote chain at a pinned block",
		Flags: []cli.Flag{
			rpcFlag,
			blockFlag,
			cacheDirFlag,
			configFlag,
			requestTimeoutFlag,
			fetchConcurrencyFlag,
			verbosityFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Commands: []cli.Command{
			{
				Name:      "account",
				Usage:     "print the account at the pinned block",
				ArgsUsage: "<address>",
				Action:    withDatabase(accountAction),
			},
			{
				Name:      "storage",
				Usage:     "print a storage slot at the pinned block",
				ArgsUsage: "<address> <slot>",
				Action:    withDatabase(storageAction),
			},
			{
				Name:      "blockhash",
				Usage:     "print the hash of a block",
				ArgsUsage: "<number>",
				Action:    withDatabase(blockHashAction),
			},
			{
				Name:      "warm",
				Usage:     "fetch the accounts listed in a file and persist them into the cache dir",
				ArgsUsage: "<file>",
				Action:    withDatabase(warmAction),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withDatabase opens the fork and runs action against a database on top of it.
func withDatabase(action func(ctx *cli.Context, exitCtx context.Context, db *forkdb.Database) error) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		initLogger(ctx)

		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}

		if ctx.GlobalBool(enableMetricsFlag.Name) {
			metrics.InitializePrometheusMetrics()
			url, closeMetrics, err := startMetricsServer(ctx.GlobalString(metricsAddrFlag.Name))
			if err != nil {
				return err
			}
			defer func() { log.Info("stopping metrics server..."); closeMetrics() }()
			log.Info("metrics server started", "url", url)
		}

		exitCtx := handleExitSignal()
		f, err := openFork(exitCtx, cfg)
		if err != nil {
			return err
		}
		defer f.Close()

		return action(ctx, exitCtx, forkdb.New(f.backend))
	}
}

type accountJSON struct {
	Balance  *hexutil.Big   `json:"balance"`
	Nonce    hexutil.Uint64 `json:"nonce"`
	CodeHash types.Bytes32  `json:"codeHash"`
	Code     hexutil.Bytes  `json:"code,omitempty"`
}

func accountAction(ctx *cli.Context, _ context.Context, db *forkdb.Database) error {
	if ctx.NArg() != 1 {
		return errors.New("address required")
	}
	addr, err := types.ParseAddress(ctx.Args().First())
	if err != nil {
		return errors.Wrap(err, "address")
	}
	info, err := db.Account(addr)
	if err != nil {
		return err
	}
	code, err := db.Code(info.CodeHash)
	if err != nil {
		return err
	}
	return printJSON(&accountJSON{
		Balance:  (*hexutil.Big)(info.Balance.ToBig()),
		Nonce:    hexutil.Uint64(info.Nonce),
		CodeHash: info.CodeHash,
		Code:     code,
	})
}

func storageAction(ctx *cli.Context, _ context.Context, db *forkdb.Database) error {
	if ctx.NArg() != 2 {
		return errors.New("address and slot required")
	}
	addr, err := types.ParseAddress(ctx.Args().Get(0))
	if err != nil {
		return errors.Wrap(err, "address")
	}
	key, err := types.ParseBytes32(ctx.Args().Get(1))
	if err != nil {
		return errors.Wrap(err, "slot")
	}
	v, err := db.Storage(addr, key)
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func blockHashAction(ctx *cli.Context, _ context.Context, db *forkdb.Database) error {
	if ctx.NArg() != 1 {
		return errors.New("block number required")
	}
	number, err := strconv.ParseUint(ctx.Args().First(), 0, 64)
	if err != nil {
		return errors.Wrap(err, "block number")
	}
	h, err := db.BlockHash(number)
	if err != nil {
		return err
	}
	fmt.Println(h)
	return nil
}

func warmAction(ctx *cli.Context, exitCtx context.Context, db *forkdb.Database) error {
	if ctx.NArg() != 1 {
		return errors.New("address file required")
	}
	file, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer file.Close()

	addrs, err := readAddresses(file)
	if err != nil {
		return errors.Wrap(err, "read addresses")
	}

	backend, ok := db.Source().(*remote.Backend)
	if !ok {
		return errors.New("source can't prefetch")
	}

	bar := pb.New(len(addrs)).SetMaxWidth(90).Start()
	defer func() { bar.NotPrint = true }()

	for len(addrs) > 0 {
		n := min(warmBatchSize, len(addrs))
		if err := backend.Prefetch(exitCtx, addrs[:n]); err != nil {
			return err
		}
		bar.Add(n)
		addrs = addrs[n:]
	}
	bar.Finish()

	db.FlushCache()
	accounts, slots, hashes := db.Source().Cache().Len()
	log.Info("cache warmed", "accounts", accounts, "slots", slots, "blockHashes", hashes)
	return nil
}
