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

	"github.com/perkeep/nodepack/internal/extractor"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack",
	Short: "Restore a node_modules tree from a snapshot database",
	RunE:  runUnpack,
}

func init() {
	unpackCmd.Flags().StringP("input", "i", "./node_modules.db", "Snapshot database to read")
	unpackCmd.Flags().StringP("output", "o", "./node_modules", "Directory to restore into")
	unpackCmd.Flags().BoolP("force", "f", false, "Overwrite a non-empty output directory")
}

func runUnpack(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	summary, err := extractor.Extract(extractor.Options{
		DatabasePath: input,
		OutputPath:   output,
		Force:        force,
		Logger:       logger,
		Progress:     printProgress,
	})
	if err != nil {
		return err
	}

	fmt.Printf("restored %d files (%d bytes) into %s\n", summary.TotalFiles, summary.TotalSize, output)
	return nil
}
