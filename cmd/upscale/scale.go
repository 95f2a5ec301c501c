package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/srlehn/upscaler"
	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/encoder/encmulti"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/imgload"
	"github.com/srlehn/upscaler/internal/logx"
	"github.com/srlehn/upscaler/internal/preview"
	"github.com/srlehn/upscaler/job"
	"github.com/srlehn/upscaler/resize/rdefault"
	"github.com/srlehn/upscaler/tui/bubbleteaprog"
)

func init() {
	rootCmd.AddCommand(scaleCmd)
	scaleCmd.Flags().Float64VarP(&factorFlag, `factor`, `f`, upscaler.DefaultScale, `scale factor`)
	scaleCmd.Flags().VarP(&algorithmFlag, `algorithm`, `a`, `interpolation kernel: bilinear, bicubic or lanczos3`)
	scaleCmd.Flags().DurationVarP(&timeoutFlag, `timeout`, `t`, 0, `cancel the job after this duration (0: never)`)
	scaleCmd.Flags().BoolVar(&tuiFlag, `tui`, false, `show an interactive progress bar`)
	scaleCmd.Flags().BoolVar(&previewFlag, `preview`, false, `print the result as sixel graphics`)
}

var scaleCmd = &cobra.Command{
	Use:   scaleCmdStr + ` <input> <output>`,
	Short: `scale an image`,
	Long: `Scale an image by a factor.

The output format follows the extension of the output file (` + fmt.Sprint(encmulti.Formats()) + `).
Press ctrl+c to cancel.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(scaleFunc(args[0], args[1]))
	},
}

var (
	scaleCmdStr   = `scale`
	factorFlag    float64
	algorithmFlag = upscaler.DefaultAlgorithm
	timeoutFlag   time.Duration
	tuiFlag       bool
	previewFlag   bool
)

func scaleFunc(inFile, outFile string) runFunc {
	return func(logger *slog.Logger) error {
		lp := logx.Prov(logger)
		buf, err := imgload.Buffer(inFile)
		if err != nil {
			return err
		}
		ctrl, err := job.NewController(
			job.SetTimeout(timeoutFlag),
			job.SetSLogger(handler(logger), logger != nil),
		)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		title := fmt.Sprintf(`%s ×%v %s`, inFile, factorFlag, algorithmFlag)
		out, err := logx.TimeIt2(func() (job.Outcome, error) {
			h, err := ctrl.Submit(buf, factorFlag, algorithmFlag)
			if err != nil {
				return job.Outcome{}, err
			}
			if tuiFlag {
				return bubbleteaprog.Run(ctx, h, title, nil, os.Stderr)
			}
			return waitPlain(ctx, h)
		}, `scaling`, lp, `algorithm`, algorithmFlag.String(), `factor`, factorFlag)
		if err != nil {
			return err
		}
		switch out.State {
		case job.StateCompleted:
		case job.StateCancelled:
			return errors.New(consts.ErrCancelled)
		default:
			return errors.Errorf(`job ended in state %s`, out.State)
		}

		img := out.Buffer.Image()
		if err := (&encmulti.MultiEncoder{}).EncodeFile(outFile, img); err != nil {
			return err
		}
		logx.Info(`written`, lp, `file`, outFile, `width`, out.Buffer.Width(), `height`, out.Buffer.Height())
		if previewFlag {
			return preview.Sixel(os.Stdout, img, &rdefault.Resizer{}, 0)
		}
		return nil
	}
}

// waitPlain prints the progress to stderr.
func waitPlain(ctx context.Context, h *job.Handle) (job.Outcome, error) {
	out := termenv.NewOutput(os.Stderr)
	if !silentFlag {
		out.HideCursor()
		defer out.ShowCursor()
	}
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for p := range h.Progress() {
			if !silentFlag {
				out.ClearLine()
				fmt.Fprintf(out, "\r%3d%%", p)
			}
		}
	}()
	o, err := h.Wait(ctx)
	<-printed
	if !silentFlag {
		out.ClearLine()
		status := out.String(o.State.String())
		if o.State == job.StateCompleted {
			status = status.Foreground(out.Color(`2`))
		} else {
			status = status.Foreground(out.Color(`1`))
		}
		fmt.Fprintln(out, "\r"+status.String())
	}
	return o, err
}

func handler(logger *slog.Logger) slog.Handler {
	if logger == nil {
		return nil
	}
	return logger.Handler()
}

