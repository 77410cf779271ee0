package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	rootOpts = struct {
		svd        string
		config     string
		gap        int
		maxChunk   uint64
		jobs       int
		imageSpecs []string
	}{}

	rootCmd = &cobra.Command{
		Use:   "regview",
		Short: "Inspect memory mapped peripheral registers",
		Long: "regview reads CMSIS-SVD device descriptions and shows the registers of their peripherals, " +
			"read from memory dumps, in hex, decimal or binary.",
		SilenceUsage: true,
	}
)

func init() {
	bindRootFlags(rootCmd.PersistentFlags())
	rootCmd.MarkPersistentFlagRequired("svd")

	rootCmd.AddCommand(rangesCmd, readCmd, writeCmd, stateCmd, genCmd)
}

func bindRootFlags(flags *pflag.FlagSet) {
	flags.StringVar(&rootOpts.svd, "svd", "", "CMSIS-SVD device description")
	flags.StringVar(&rootOpts.config, "config", "", "settings file. Default: $REGVIEW_CONFIG")
	flags.IntVar(&rootOpts.gap, "gap", 16, "largest hole in bytes read along with the registers around it. Negative never merges")
	flags.Uint64Var(&rootOpts.maxChunk, "max-chunk", 4096, "largest single read in bytes")
	flags.IntVarP(&rootOpts.jobs, "jobs", "j", 0, "peripherals read in parallel. 0 reads all at once")
	flags.StringSliceVarP(&rootOpts.imageSpecs, "image", "i", nil, "memory dump as FILE@ADDRESS. May be repeated")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
