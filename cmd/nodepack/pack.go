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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perkeep/nodepack/internal/packer"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack a node_modules tree into a snapshot database",
	RunE:  runPack,
}

func init() {
	packCmd.Flags().StringP("source", "s", "./node_modules", "Dependency tree to pack")
	packCmd.Flags().StringP("output", "o", "./node_modules.db", "Snapshot database to write")
	packCmd.Flags().IntP("level", "c", 6, "Gzip compression level (1-9)")
	packCmd.Flags().Bool("include-lockfile", false, "Record a content hash of the sibling package-lock.json")
}

func runPack(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	output, _ := cmd.Flags().GetString("output")
	level, _ := cmd.Flags().GetInt("level")
	includeLockfile, _ := cmd.Flags().GetBool("include-lockfile")

	summary, err := packer.Pack(packer.Options{
		SourcePath:      source,
		OutputPath:      output,
		CompressLevel:   level,
		IncludeLockfile: includeLockfile,
		Logger:          logger,
		Progress:        printProgress,
	})
	if err != nil {
		return err
	}

	fmt.Printf("packed %d packages, %d files (%d deduplicated) into %s\n",
		summary.PackageCount, summary.FileCount, summary.Deduplicated, output)
	return nil
}
