package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/srlehn/upscaler/internal/consts"
)

func init() { rootCmd.AddCommand(versionCmd) }

var versionCmd = &cobra.Command{
	Use:   `version`,
	Short: `print version information`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(*slog.Logger) error {
			version := `(devel)`
			if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 {
				version = bi.Main.Version
			}
			fmt.Printf("%s %s %s/%s %s\n", consts.LibraryName, version, runtime.GOOS, runtime.GOARCH, runtime.Version())
			return nil
		})
	},
}
