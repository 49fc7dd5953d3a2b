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

	"github.com/perkeep/nodepack/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Diff a snapshot database against its source tree",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().String("db", "./node_modules.db", "Snapshot database to diff against")
	statusCmd.Flags().StringP("tree", "n", "./node_modules", "Current tree to compare")
}

func runStatus(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	treePath, _ := cmd.Flags().GetString("tree")

	report, err := status.Diff(status.Options{
		DatabasePath: dbPath,
		TreePath:     treePath,
		Logger:       logger,
		Progress:     printProgress,
	})
	if err != nil {
		return err
	}

	fmt.Printf("unchanged: %d\n", report.Unchanged)
	fmt.Printf("modified (%d):\n", len(report.Modified))
	for _, p := range report.Modified {
		fmt.Printf("  %s\n", p)
	}
	fmt.Printf("only in db (%d):\n", len(report.OnlyInDB))
	for _, p := range report.OnlyInDB {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
