// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/forkdb/log"
)

var (
	rpcFlag = cli.StringFlag{
		Name:   "rpc",
		Value:  "http://localhost:8545",
		EnvVar: "FORKDB_RPC",
		Usage:  "JSON-RPC endpoint of the chain to fork, it must serve historical state",
	}
	blockFlag = cli.Uint64Flag{
		Name:   "block",
		EnvVar: "FORKDB_BLOCK",
		Usage:  "block number to fork at, 0 for the latest",
	}
	cacheDirFlag = cli.StringFlag{
		Name:   "cache-dir",
		EnvVar: "FORKDB_CACHE_DIR",
		Usage:  "directory to persist fetched state, in memory only if empty",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file, flags take precedence over it",
	}
	requestTimeoutFlag = cli.DurationFlag{
		Name:  "request-timeout",
		Value: defaultRequestTimeout,
		Usage: "timeout of each remote request",
	}
	fetchConcurrencyFlag = cli.IntFlag{
		Name:  "fetch-concurrency",
		Value: 16,
		Usage: "max concurrent remote requests when warming the cache",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-5)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
)
