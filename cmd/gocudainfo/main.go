// gocudainfo prints the device report against the simulated driver, the same
// report a real binding produces on a machine with GPUs. It is a development
// aid: it exercises enumeration, ranking, the info formatting and, with
// --libs, shows which CUDA libraries a real binding would find on this host.
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/emberml/gocuda"
	"github.com/emberml/gocuda/sim"
)

var (
	flagDevices int
	flagRank    string
	flagLibs    bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gocudainfo",
		Short:        "Print the gocuda device report using the simulated driver",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	cmd.Flags().IntVar(&flagDevices, "devices", 0,
		"number of simulated devices, 0 uses the default catalog")
	cmd.Flags().StringVar(&flagRank, "rank", "",
		"device ranking applied at construction, one of "+strings.Join(gocuda.RankModeStrings(), ", "))
	cmd.Flags().BoolVar(&flagLibs, "libs", false,
		"also list the CUDA libraries installed on this host")
	cmd.Flags().AddGoFlagSet(goflag.CommandLine)
	return cmd
}

func run() error {
	opts := &gocuda.Options{}
	if flagRank != "" {
		mode, err := gocuda.RankModeString(flagRank)
		if err != nil {
			return err
		}
		opts.InitialRank = mode
	}
	specs := sim.DefaultCatalog
	if flagDevices > 0 {
		specs = sim.Catalog(flagDevices)
	}
	mgr, err := gocuda.New(sim.New(specs...), opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			klog.Errorf("Closing manager: %+v", err)
		}
	}()

	fmt.Print(must.M1(mgr.AllInfo()))
	if host, err := mgr.HostMemorySize(); err == nil {
		fmt.Printf("Host memory: %d MB\n", host/(1024*1024))
	}
	if flagLibs {
		printLibraries("runtime", gocuda.LocateRuntimeLibraries())
		printLibraries("driver", gocuda.LocateDriverLibraries())
	}
	return nil
}

func printLibraries(kind string, paths []string) {
	if len(paths) == 0 {
		fmt.Printf("No CUDA %s libraries found\n", kind)
		return
	}
	fmt.Printf("CUDA %s libraries:\n", kind)
	for _, path := range paths {
		fmt.Printf("  %s\n", path)
	}
}

func main() {
	klog.InitFlags(nil)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
