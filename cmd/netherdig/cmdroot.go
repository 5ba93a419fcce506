// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/netherd/netherd/batch"

	"github.com/spf13/cobra"
)

// defaultPort is combined with host names given without an explicit ":port".
const defaultPort = 80

var (
	indentation     *uint
	spinnerInterval *time.Duration
	workerNumber    *uint
	debug           *bool
	verifyAddresses *bool
	resolverAddress *string
	lookupTimeout   *time.Duration
)

func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:     "netherdig [flags] host[:port] [...]",
		Short:   "netherdig resolves and optionally validates DNS names using a background lookup daemon",
		Version: "0.9",
		Args:    cobra.MinimumNArgs(1),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if *indentation > 80 {
				return fmt.Errorf("--indent width out of range [0..80]")
			}
			if *workerNumber < 1 || *workerNumber > 10 {
				return fmt.Errorf("--workers out of range [1..10]")
			}
			if *spinnerInterval < 10*time.Millisecond {
				return fmt.Errorf("--spinner must be at least 10ms")
			}
			if *lookupTimeout < time.Millisecond {
				return fmt.Errorf("--timeout must be at least 1ms")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if *debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
			slog.Debug("debug logging enabled")
			targets := make([]batch.Target, 0, len(args))
			for _, arg := range args {
				target, err := parseTarget(arg)
				if err != nil {
					return err
				}
				targets = append(targets, target)
			}
			return ResolveAndReport(context.Background(), targets)
		},
	}
	// Sets up the flags.
	debug = rootCmd.PersistentFlags().Bool(
		"debug", false, "enable debugging output")
	indentation = rootCmd.PersistentFlags().Uint(
		"indent", 3, "indentation width")
	spinnerInterval = rootCmd.PersistentFlags().Duration(
		"spinner", 100*time.Millisecond, "spinner interval")
	workerNumber = rootCmd.PersistentFlags().Uint(
		"workers", 5, "number of lookup awaiter and ping workers")
	verifyAddresses = rootCmd.PersistentFlags().Bool(
		"verify", false, "verify resolved addresses by pinging them")
	resolverAddress = rootCmd.PersistentFlags().String(
		"resolver", "", "host:port of a DNS server to query directly instead of the system resolver")
	lookupTimeout = rootCmd.PersistentFlags().Duration(
		"timeout", 5*time.Second, "timeout for an individual name lookup")
	return
}

// parseTarget splits a "host[:port]" command line argument into a lookup
// target, falling back to the default port where none is given. Bracketed IPv6
// literals keep their brackets when unaccompanied by a port; the lookup
// daemon strips them.
func parseTarget(arg string) (batch.Target, error) {
	host, portstr, err := net.SplitHostPort(arg)
	if err != nil {
		return batch.Target{Host: arg, Port: defaultPort}, nil
	}
	port, err := strconv.ParseUint(portstr, 10, 16)
	if err != nil {
		return batch.Target{}, fmt.Errorf("invalid port in %q: %w", arg, err)
	}
	return batch.Target{Host: host, Port: uint16(port)}, nil
}
