package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/regview/config"
	"omibyte.io/regview/memio"
	"omibyte.io/regview/peripheral"
	"omibyte.io/regview/svd"
)

// loadSettings reads the settings and applies the flags that were given.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(rootOpts.config)
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("gap") {
		settings.GapThreshold = rootOpts.gap
	}
	if flags.Changed("max-chunk") {
		settings.MaxChunk = rootOpts.maxChunk &^ 3
	}
	if flags.Changed("jobs") {
		settings.ReadConcurrency = rootOpts.jobs
	}
	return settings, nil
}

func loadDevice(cmd *cobra.Command) (*svd.Device, config.Settings, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, config.Settings{}, err
	}

	dev, err := svd.ParseFile(rootOpts.svd, svd.Options{
		GapThreshold: settings.GapThreshold,
		MaxChunk:     settings.MaxChunk,
		Concurrency:  settings.ReadConcurrency,
	})
	if err != nil {
		return nil, config.Settings{}, err
	}
	return dev, settings, nil
}

func loadImage() (*memio.Image, error) {
	if len(rootOpts.imageSpecs) == 0 {
		return nil, fmt.Errorf("no memory dump given, use --image FILE@ADDRESS")
	}
	image := memio.NewImage()
	for _, spec := range rootOpts.imageSpecs {
		if err := image.LoadFile(spec); err != nil {
			return nil, err
		}
	}
	return image, nil
}

// selectPeripherals returns the peripherals named by the first part of each
// path, or all of them when paths is empty.
func selectPeripherals(dev *svd.Device, paths []string) ([]*peripheral.Peripheral, error) {
	if len(paths) == 0 {
		return dev.Peripherals, nil
	}

	var result []*peripheral.Peripheral
	seen := map[string]bool{}
	for _, path := range paths {
		name, _, _ := strings.Cut(path, ".")
		p, ok := dev.Peripheral(name)
		if !ok {
			return nil, &peripheral.PathError{Path: path}
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, p)
		}
	}
	return result, nil
}

// refresh expands and reads the peripherals. Read failures are logged and the
// values left as read.
func refresh(ctx context.Context, s memio.Session, peripherals []*peripheral.Peripheral, jobs int) {
	for _, p := range peripherals {
		p.SetExpanded(true)
	}
	if err := peripheral.RefreshAll(ctx, s, peripherals, jobs); err != nil {
		log.Printf("warning: %v", err)
	}
}
