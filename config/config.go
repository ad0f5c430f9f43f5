// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/solana-baremetal/counter-cli/consts"
	"github.com/solana-baremetal/counter-cli/utils"
)

const (
	DefaultPath        = "~/.config/solana/cli/config.yml"
	DefaultKeypairPath = "~/.config/solana/id.json"
	DefaultCommitment  = string(rpc.CommitmentConfirmed)
)

var ErrInvalidCommitment = errors.New("invalid commitment")

// Config is the subset of the Solana CLI configuration used by the client.
type Config struct {
	JSONRPCURL   string `yaml:"json_rpc_url" json:"jsonRpcUrl"`
	WebsocketURL string `yaml:"websocket_url" json:"websocketUrl,omitempty"`
	KeypairPath  string `yaml:"keypair_path" json:"keypairPath"`
	Commitment   string `yaml:"commitment" json:"commitment"`

	// Warnings describes every value that fell back to a default.
	Warnings []string `yaml:"-" json:"-"`
}

// Load reads the Solana CLI configuration at [path]. A missing file or
// missing values fall back to a local cluster and the default keypair.
func Load(path string) (*Config, error) {
	c := &Config{}
	expanded, err := utils.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	_, err = os.Stat(expanded)
	switch {
	case err == nil:
		v := viper.New()
		v.SetConfigFile(expanded)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config %s", err, expanded)
		}
		c.JSONRPCURL = v.GetString("json_rpc_url")
		c.WebsocketURL = v.GetString("websocket_url")
		c.KeypairPath = v.GetString("keypair_path")
		c.Commitment = v.GetString("commitment")
	case errors.Is(err, fs.ErrNotExist):
		c.warn("config file %s not found", expanded)
	default:
		return nil, err
	}

	if c.JSONRPCURL == "" {
		c.JSONRPCURL = consts.DefaultRPCURL
		c.warn("missing RPC URL, falling back to %s", consts.DefaultRPCURL)
	}
	if c.KeypairPath == "" {
		c.KeypairPath = DefaultKeypairPath
		c.warn("missing keypair path, falling back to %s", DefaultKeypairPath)
	}
	if c.Commitment == "" {
		c.Commitment = DefaultCommitment
	}
	c.KeypairPath, err = utils.ExpandHome(c.KeypairPath)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) warn(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// CommitmentType returns the configured commitment level.
func (c *Config) CommitmentType() (rpc.CommitmentType, error) {
	return ParseCommitment(c.Commitment)
}

func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch rpc.CommitmentType(s) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return rpc.CommitmentType(s), nil
	// Deprecated aliases still written by older CLI releases.
	case "recent", "single":
		return rpc.CommitmentProcessed, nil
	case "singleGossip":
		return rpc.CommitmentConfirmed, nil
	case "root", "max":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCommitment, s)
	}
}
