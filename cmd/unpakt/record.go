package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/filesystem"
	"github.com/unpakt/unpakt/pkg/paths"
	"github.com/unpakt/unpakt/pkg/record"
)

var recordTarget string

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Show the installation record of an installation root",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(recordTarget)
		if err != nil {
			return errors.Wrap(err, errors.ErrInvalidInput, "cannot resolve installation root")
		}

		writer := &record.Writer{FS: filesystem.NewOS(), Path: paths.RecordFile(root)}
		rec, err := writer.Read()
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Printf("No installation record at %s\n", paths.RecordFile(root))
			return nil
		}

		fmt.Printf("Installed packs (%d):\n", len(rec.Packs))
		for _, pack := range rec.Packs {
			fmt.Printf("  - %s\n", pack.Name)
		}

		names := make([]string, 0, len(rec.Variables))
		for name := range rec.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("Variables (%d):\n", len(names))
		for _, name := range names {
			fmt.Printf("  %s = %s\n", name, rec.Variables[name])
		}
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordTarget, "target", ".", "Installation root")
}
