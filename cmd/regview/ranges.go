package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omibyte.io/regview/memrange"
)

var rangesOpts = struct {
	usage   bool
	aligned bool
}{}

var rangesCmd = &cobra.Command{
	Use:   "ranges [PERIPHERAL...]",
	Short: "Print the read plan of peripherals",
	Long:  "Print the address ranges read to update each peripheral after merging the holes up to --gap bytes and splitting into chunks of --max-chunk bytes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, _, err := loadDevice(cmd)
		if err != nil {
			return err
		}
		peripherals, err := selectPeripherals(dev, args)
		if err != nil {
			return err
		}

		for _, p := range peripherals {
			ranges := p.AddrRanges()
			fmt.Printf("%s: %d reads, %d bytes\n", p.Label(), len(ranges), memrange.Total(ranges))
			printRanges(ranges)

			if rangesOpts.usage {
				used := p.InUse()
				fmt.Printf("  used: %d bytes\n", used.Count())
				printRanges(used.AddressRangesExact(p.BaseAddress(), rangesOpts.aligned))
			}
		}
		return nil
	},
}

func init() {
	rangesCmd.Flags().BoolVar(&rangesOpts.usage, "usage", false, "also print the bytes covered by registers")
	rangesCmd.Flags().BoolVar(&rangesOpts.aligned, "aligned", false, "count used bytes in 4-byte groups")
}

func printRanges(ranges []memrange.AddrRange) {
	for _, r := range ranges {
		fmt.Printf("\t%#08x-%#08x (%d)\n", r.Base, r.EndAddr(), r.Length)
	}
}
