/*
Copyright 2026 The Perkeep Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command nodepack packs a node_modules tree into a single
// content-addressed snapshot database, and restores or diffs against
// one.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/perkeep/nodepack/internal/logging"
)

var logger zerolog.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nodepack",
	Short: "Pack, unpack, and diff node_modules trees as content-addressed snapshots",
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(unpackCmd)
	rootCmd.AddCommand(statusCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")

	logger = logging.New(logging.Config{
		Level:      logging.Level(level),
		JSONOutput: jsonOutput,
	})
}

// printProgress renders a single overwriting progress line to stderr,
// the CLI's only adapter over the core's (current, total, message)
// callback contract.
func printProgress(current, total int, message string) {
	fmt.Fprintf(os.Stderr, "\r[%d/%d] %s", current, total, message)
	if current == total {
		fmt.Fprintln(os.Stderr)
	}
}
