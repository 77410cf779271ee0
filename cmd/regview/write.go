package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"omibyte.io/regview/peripheral"
)

var writeReset bool

var writeCmd = &cobra.Command{
	Use:   "write PATH [VALUE]",
	Short: "Write a register or field of a memory dump",
	Long: "Validate VALUE for the register or field at PATH, write it to the loaded memory dumps, then read the peripheral " +
		"back and print the new value. Enumerated fields take the name of a value. With --reset a register is written " +
		"with its reset value and VALUE is omitted.",
	Args: func(cmd *cobra.Command, args []string) error {
		if writeReset {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, settings, err := loadDevice(cmd)
		if err != nil {
			return err
		}
		image, err := loadImage()
		if err != nil {
			return err
		}

		n, err := peripheral.Find(dev.Peripherals, args[0])
		if err != nil {
			return err
		}
		v, ok := n.(peripheral.Valued)
		if !ok {
			return fmt.Errorf("%s is not a register or field", args[0])
		}
		var value uint64
		if !writeReset {
			if value, err = v.ParseValue(args[1]); err != nil {
				return err
			}
		}

		// Fields are written as part of the current register value.
		refresh(cmd.Context(), image, []*peripheral.Peripheral{n.Peripheral()}, settings.ReadConcurrency)

		if writeReset {
			reg, ok := n.(*peripheral.Register)
			if !ok {
				return fmt.Errorf("%s is not a register", args[0])
			}
			reg.Reset()
			value = reg.Value()
		}

		if err := v.Write(cmd.Context(), image, value); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", n.Label(), v.FormattedValue(v.Format()))
		return nil
	},
}

func init() {
	writeCmd.Flags().BoolVar(&writeReset, "reset", false, "write the reset value of the register")
}
