package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/logx"
)

var rootCmd = &cobra.Command{
	Use:              filepath.Base(os.Args[0]),
	Short:            consts.LibraryName + ` scales images with bilinear, bicubic and Lanczos-3 interpolation`,
	Long:             consts.LibraryName + ` scales images with bilinear, bicubic and Lanczos-3 interpolation`,
	SilenceUsage:     true,
	SilenceErrors:    true,
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, `debug`, `d`, false, `debug errors and log at debug level`)
	rootCmd.PersistentFlags().BoolVarP(&silentFlag, `silent`, `s`, false, `silence errors`)
	rootCmd.PersistentFlags().StringVarP(&logFileFlag, `log-file`, `l`, ``, `log file`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	debugFlag      bool
	silentFlag     bool
	logFileFlag    string
	cpuProfileFlag string
	cpuProfilefunc func(profileFile string) func()
)

// runFunc receives the configured logger, nil when logging is off.
type runFunc func(logger *slog.Logger) error

func run(fn runFunc) {
	var exitCode int
	defer func() {
		if r := recover(); r != nil {
			exitCode = 1
			if !silentFlag {
				if stackFramer, ok := r.(interface{ ErrorStack() string }); ok {
					fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
				} else {
					fmt.Fprintln(os.Stderr, r)
					debug.PrintStack()
				}
			}
		}
		os.Exit(exitCode)
	}()
	if fn == nil {
		panic(errors.NilParam())
	}
	if len(cpuProfileFlag) > 0 && cpuProfilefunc != nil {
		if stop := cpuProfilefunc(cpuProfileFlag); stop != nil {
			defer stop()
		}
	}
	logger, closeLog, err := newLogger()
	if err == nil {
		defer closeLog()
		err = fn(logger)
	}
	if err != nil {
		logx.IsErr(err, logx.Prov(logger), slog.LevelError)
		exitCode = 1
		if !silentFlag {
			if stackFramer, ok := err.(interface{ ErrorStack() string }); debugFlag && ok {
				fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
			} else {
				fmt.Fprintln(os.Stderr, "\n"+err.Error())
			}
		}
	}
}

// newLogger logs to the log file if one is set, otherwise to stderr with
// --debug. Without either logging is off.
func newLogger() (*slog.Logger, func(), error) {
	lvl := slog.LevelInfo
	if debugFlag {
		lvl = slog.LevelDebug
	}
	var w io.Writer
	closeFn := func() {}
	switch {
	case len(logFileFlag) > 0:
		f, err := os.OpenFile(logFileFlag, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return nil, closeFn, errors.New(err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case debugFlag:
		w = os.Stderr
	default:
		return nil, closeFn, nil
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true, Level: lvl})
	return slog.New(h), closeFn, nil
}
