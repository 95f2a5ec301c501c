package main

import (
	"image"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/srlehn/upscaler/internal/encoder/encmulti"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/imgload"
	"github.com/srlehn/upscaler/internal/logx"
	"github.com/srlehn/upscaler/internal/sheet"
	"github.com/srlehn/upscaler/resample"
	"github.com/srlehn/upscaler/resize/rall"
)

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Float64VarP(&factorFlag, `factor`, `f`, 2, `scale factor`)
	compareCmd.Flags().VarP(&algorithmFlag, `algorithm`, `a`, `interpolation kernel: bilinear, bicubic or lanczos3`)
	compareCmd.Flags().StringSliceVarP(&resizersFlag, `resizers`, `r`, rall.Names(), `resizer backends`)
	compareCmd.Flags().IntVarP(&columnsFlag, `columns`, `c`, 3, `tiles per row`)
	compareCmd.Flags().StringVar(&detailFlag, `detail`, ``, `compare only the source region <x>,<y>,<w>x<h>`)
	compareCmd.Flags().IntVar(&zoomFlag, `zoom`, 4, `magnification of the detail region`)
}

var compareCmd = &cobra.Command{
	Use:   compareCmdStr + ` <input> <output>`,
	Short: `compare the native kernels with other resizers`,
	Long: `Scale an image with several resizer backends and render the results
side by side into a contact sheet.

Available resizers: ` + strings.Join(rall.Names(), `, `),
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(compareFunc(args[0], args[1]))
	},
}

var (
	compareCmdStr = `compare`
	resizersFlag  []string
	columnsFlag   int
	detailFlag    string
	zoomFlag      int
)

func compareFunc(inFile, outFile string) runFunc {
	return func(logger *slog.Logger) error {
		lp := logx.Prov(logger)
		img, _, err := imgload.File(inFile)
		if err != nil {
			return err
		}
		b := img.Bounds()
		w, h, err := resample.DestSize(b.Dx(), b.Dy(), factorFlag)
		if err != nil {
			return err
		}
		size := image.Pt(w, h)
		opts := sheet.Options{Columns: columnsFlag, Padding: 4}
		if len(detailFlag) > 0 {
			rect, err := parseRect(detailFlag)
			if err != nil {
				return err
			}
			// the region is given in source pixels
			opts.Detail = image.Rect(
				int(float64(rect.Min.X)*factorFlag), int(float64(rect.Min.Y)*factorFlag),
				int(float64(rect.Max.X)*factorFlag), int(float64(rect.Max.Y)*factorFlag),
			)
			opts.DetailZoom = zoomFlag
		}

		// backends run concurrently, tiles keep the order of the flag
		results := make([]image.Image, len(resizersFlag))
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, name := range resizersFlag {
			rsz, err := rall.ByName(name, algorithmFlag)
			if err != nil {
				return err
			}
			g.Go(func() error {
				m, err := logx.TimeIt2(func() (image.Image, error) {
					return rsz.Resize(img, size)
				}, `resized`, lp, `resizer`, name)
				if !logx.IsErr(err, lp, slog.LevelWarn, `resizer`, name) {
					results[i] = m
				}
				return nil
			})
		}
		_ = g.Wait()
		var tiles []sheet.Tile
		for i, m := range results {
			if m != nil {
				tiles = append(tiles, sheet.Tile{Label: resizersFlag[i] + ` ` + algorithmFlag.String(), Image: m})
			}
		}
		if len(tiles) == 0 {
			return errors.New(`no resizer succeeded`)
		}
		sheetImg, err := sheet.Render(tiles, opts)
		if err != nil {
			return err
		}
		return (&encmulti.MultiEncoder{}).EncodeFile(outFile, sheetImg)
	}
}

var errRectUsage = errors.New(`region not "<x>,<y>,<w>x<h>"`)

func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, `,`)
	if len(parts) != 3 {
		return image.Rectangle{}, errRectUsage
	}
	wh := strings.SplitN(parts[2], `x`, 2)
	if len(wh) != 2 {
		return image.Rectangle{}, errRectUsage
	}
	var v [4]int
	for i, p := range []string{parts[0], parts[1], wh[0], wh[1]} {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return image.Rectangle{}, errRectUsage
		}
		v[i] = n
	}
	if v[2] == 0 || v[3] == 0 {
		return image.Rectangle{}, errRectUsage
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}
