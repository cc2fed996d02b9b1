package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var (
		short bool
		deps  bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the vrt version, the commit it was built from and the Go toolchain.`,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(version)
				return
			}

			rev, built := commit, date
			bi, ok := debug.ReadBuildInfo()
			if ok {
				for _, s := range bi.Settings {
					switch {
					case s.Key == "vcs.revision" && rev == "none":
						rev = s.Value
					case s.Key == "vcs.time" && built == "unknown":
						built = s.Value
					}
				}
			}

			printBanner()
			fmt.Println()
			fmt.Printf("  vrt         %s\n", version)
			fmt.Printf("  commit      %s\n", rev)
			fmt.Printf("  built       %s\n", built)
			fmt.Printf("  go          %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if deps && ok {
				fmt.Println()
				for _, d := range bi.Deps {
					info("%s %s", d.Path, d.Version)
				}
			}
			fmt.Println()
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	cmd.Flags().BoolVar(&deps, "deps", false, "List module dependencies")

	return cmd
}
