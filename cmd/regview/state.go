package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"omibyte.io/regview/peripheral"
	"omibyte.io/regview/svd"
)

var (
	stateOpts = struct {
		file    string
		expand  []string
		pin     []string
		unpin   []string
		formats []string
	}{}

	stateCmd = &cobra.Command{
		Use:   "state",
		Short: "Manage the saved view state of nodes",
	}

	stateSaveCmd = &cobra.Command{
		Use:   "save",
		Short: "Update the state file",
		Long:  "Apply the existing state file to the device, change the expanded, pinned and format flags given on the command line and save the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := loadState(cmd)
			if err != nil {
				return err
			}

			for _, path := range stateOpts.expand {
				n, err := peripheral.Find(dev.Peripherals, path)
				if err != nil {
					return err
				}
				n.SetExpanded(true)
			}
			for _, path := range stateOpts.pin {
				n, err := peripheral.Find(dev.Peripherals, path)
				if err != nil {
					return err
				}
				n.SetPinned(true)
			}
			for _, path := range stateOpts.unpin {
				n, err := peripheral.Find(dev.Peripherals, path)
				if err != nil {
					return err
				}
				n.SetPinned(false)
			}
			for _, spec := range stateOpts.formats {
				path, name, ok := strings.Cut(spec, "=")
				if !ok {
					return fmt.Errorf("format %q is not PATH=FORMAT", spec)
				}
				format, err := peripheral.ParseFormat(name)
				if err != nil {
					return err
				}
				n, err := peripheral.Find(dev.Peripherals, path)
				if err != nil {
					return err
				}
				n.SetFormat(format)
			}

			data, err := yaml.Marshal(peripheral.SaveStates(dev.Peripherals))
			if err != nil {
				return err
			}
			return os.WriteFile(stateOpts.file, data, 0o644)
		},
	}

	stateShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the state that applies to the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := loadState(cmd)
			if err != nil {
				return err
			}

			peripherals := dev.Peripherals
			peripheral.Sort(peripherals)
			for _, st := range peripheral.SaveStates(peripherals) {
				var flags []string
				if st.Expanded {
					flags = append(flags, "expanded")
				}
				if st.Pinned {
					flags = append(flags, "pinned")
				}
				if st.Format != peripheral.Auto {
					flags = append(flags, st.Format.String())
				}
				fmt.Printf("%s\t%s\n", st.Node, strings.Join(flags, ","))
			}
			return nil
		},
	}
)

func init() {
	flags := stateCmd.PersistentFlags()
	flags.StringVar(&stateOpts.file, "state", "regview-state.yaml", "state file")

	stateSaveCmd.Flags().StringSliceVar(&stateOpts.expand, "expand", nil, "paths of nodes to expand")
	stateSaveCmd.Flags().StringSliceVar(&stateOpts.pin, "pin", nil, "paths of nodes to pin")
	stateSaveCmd.Flags().StringSliceVar(&stateOpts.unpin, "unpin", nil, "paths of nodes to unpin")
	stateSaveCmd.Flags().StringSliceVar(&stateOpts.formats, "format", nil, "PATH=FORMAT with FORMAT one of auto, hex, dec or bin")

	stateCmd.AddCommand(stateSaveCmd, stateShowCmd)
}

// loadState parses the device and applies the state file to it. A missing
// state file is not an error.
func loadState(cmd *cobra.Command) (*svd.Device, error) {
	dev, _, err := loadDevice(cmd)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(stateOpts.file)
	if errors.Is(err, fs.ErrNotExist) {
		return dev, nil
	} else if err != nil {
		return nil, err
	}

	var states []peripheral.NodeState
	if err := yaml.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("%s: %w", stateOpts.file, err)
	}
	for _, path := range peripheral.ApplyStates(dev.Peripherals, states) {
		log.Printf("warning: %s: no node %s", stateOpts.file, path)
	}
	return dev, nil
}
