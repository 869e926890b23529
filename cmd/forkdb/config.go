// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

const defaultRequestTimeout = 30 * time.Second

type config struct {
	RPC              string        `yaml:"rpc"`
	Block            uint64        `yaml:"block"`
	CacheDir         string        `yaml:"cache-dir"`
	RequestTimeout   time.Duration `yaml:"request-timeout"`
	FetchConcurrency int           `yaml:"fetch-concurrency"`
	CodeCacheSizeMB  int           `yaml:"code-cache-mb"`
}

func loadConfigFile(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return &cfg, nil
}

// makeConfig merges the config file, if any, with the flags.
// Flags explicitly set win over the file.
func makeConfig(ctx *cli.Context) (*config, error) {
	cfg := &config{}
	if path := ctx.GlobalString(configFlag.Name); path != "" {
		loaded, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	override := func(name string, apply func()) {
		if ctx.GlobalIsSet(name) {
			apply()
		}
	}
	override(rpcFlag.Name, func() { cfg.RPC = ctx.GlobalString(rpcFlag.Name) })
	override(blockFlag.Name, func() { cfg.Block = ctx.GlobalUint64(blockFlag.Name) })
	override(cacheDirFlag.Name, func() { cfg.CacheDir = ctx.GlobalString(cacheDirFlag.Name) })
	override(requestTimeoutFlag.Name, func() { cfg.RequestTimeout = ctx.GlobalDuration(requestTimeoutFlag.Name) })
	override(fetchConcurrencyFlag.Name, func() { cfg.FetchConcurrency = ctx.GlobalInt(fetchConcurrencyFlag.Name) })

	// defaults for what neither the file nor the flags set
	if cfg.RPC == "" {
		cfg.RPC = ctx.GlobalString(rpcFlag.Name)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = ctx.GlobalDuration(requestTimeoutFlag.Name)
	}
	if cfg.FetchConcurrency == 0 {
		cfg.FetchConcurrency = ctx.GlobalInt(fetchConcurrencyFlag.Name)
	}
	return cfg, nil
}
