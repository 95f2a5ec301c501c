package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/kernel"
)

func init() {
	rootCmd.AddCommand(kernelsCmd)
	kernelsCmd.Flags().Float64Var(&stepFlag, `step`, 0.25, `distance between sample points`)
}

var kernelsCmd = &cobra.Command{
	Use:   `kernels`,
	Short: `print the weights of the interpolation kernels`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(kernelsFunc)
	},
}

var stepFlag float64

func kernelsFunc(_ *slog.Logger) error {
	if stepFlag <= 0 {
		return errors.Errorf(`step must be positive: %v`, stepFlag)
	}
	algs := kernel.All()
	ks := make([]kernel.Kernel, len(algs))
	var support int
	header := []string{`x`}
	for i, alg := range algs {
		k, err := alg.Kernel()
		if err != nil {
			return err
		}
		ks[i] = k
		support = max(support, k.Support)
		header = append(header, fmt.Sprintf(`%s (r=%d)`, k.Name, k.Support))
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	n := int(float64(support)/stepFlag + 0.5)
	for i := 0; i <= n; i++ {
		x := float64(i) * stepFlag
		row := []string{fmt.Sprintf(`%.3f`, x)}
		for _, k := range ks {
			row = append(row, fmt.Sprintf(`%.5f`, k.Weight(x)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}
