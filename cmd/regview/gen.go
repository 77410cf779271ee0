package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/regview/gen"
)

var (
	genOpts = struct {
		pkg    string
		output string
	}{}

	genCmd = &cobra.Command{
		Use:   "gen",
		Short: "Generate Go register constants",
		Long:  "Generate a Go source file with the address of every register and the position, mask and enumerated values of every field.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, _, err := loadDevice(cmd)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if len(genOpts.output) > 0 && genOpts.output != "-" {
				f, err := os.Create(genOpts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return gen.Generate(w, dev, genOpts.pkg)
		},
	}
)

func init() {
	genCmd.Flags().StringVar(&genOpts.pkg, "pkg", "registers", "package name of the generated file")
	genCmd.Flags().StringVarP(&genOpts.output, "output", "o", "-", "output file")
}
