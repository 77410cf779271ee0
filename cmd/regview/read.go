package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/regview/peripheral"
)

var (
	readOpts = struct {
		format string
		fields bool
	}{}

	readCmd = &cobra.Command{
		Use:   "read [PATH...]",
		Short: "Print register values read from memory dumps",
		Long: "Read the peripherals named by the dotted paths, or every peripheral, from the memory dumps and print their registers. " +
			"A path such as USART1.CR1 prints only that register.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := peripheral.ParseFormat(readOpts.format)
			if err != nil {
				return err
			}

			dev, settings, err := loadDevice(cmd)
			if err != nil {
				return err
			}
			image, err := loadImage()
			if err != nil {
				return err
			}
			peripherals, err := selectPeripherals(dev, args)
			if err != nil {
				return err
			}
			if format == peripheral.Auto {
				format = settings.DefaultFormat
			}

			refresh(cmd.Context(), image, peripherals, settings.ReadConcurrency)

			if len(args) == 0 {
				for _, p := range peripherals {
					printNode(p, format, 0)
				}
				return nil
			}
			for _, path := range args {
				n, err := peripheral.Find(peripherals, path)
				if err != nil {
					return err
				}
				printNode(n, format, 0)
			}
			return nil
		},
	}
)

func init() {
	readCmd.Flags().StringVarP(&readOpts.format, "format", "f", "", "hex, dec or bin. Default: the format of each node")
	readCmd.Flags().BoolVar(&readOpts.fields, "fields", true, "print the fields of each register")
}

// printNode prints n and its descendants. An Auto format uses the format of
// each node.
func printNode(n peripheral.Node, format peripheral.NumberFormat, depth int) {
	indent := strings.Repeat("  ", depth)
	nodeFormat := format
	if nodeFormat == peripheral.Auto {
		nodeFormat = n.Format()
	}

	switch n := n.(type) {
	case peripheral.Valued:
		fmt.Printf("%s%s = %s\n", indent, n.Label(), n.FormattedValue(nodeFormat))
		if _, ok := n.(*peripheral.Register); ok && !readOpts.fields {
			return
		}
	default:
		fmt.Printf("%s%s\n", indent, n.Label())
	}
	for _, c := range n.Children() {
		printNode(c, format, depth+1)
	}
}
