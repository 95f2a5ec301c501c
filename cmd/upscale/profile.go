//go:build dev

package main

import (
	"fmt"
	"os"
	"runtime/pprof"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cpuProfileFlag, `cpuprofile`, `p`, ``, `write cpu profile to file`)
	cpuProfilefunc = profileFunc
}

func profileFunc(profileFile string) func() {
	f, err := os.Create(profileFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = f.Close()
		return nil
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}
}
