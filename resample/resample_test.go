package resample_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/testutil"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/pixbuf"
	"github.com/srlehn/upscaler/resample"
)

var (
	red   = testutil.Red
	green = testutil.Green
	blue  = testutil.Blue
	white = testutil.White

	pattern    = testutil.Pattern
	corners2x2 = testutil.Corners2x2
)

func newBuffer(t *testing.T, w, h int, fill testutil.FillFunc) *pixbuf.Buffer {
	t.Helper()
	buf, err := testutil.Buffer(w, h, fill)
	require.NoError(t, err)
	return buf
}

func TestIdentityBilinear(t *testing.T) {
	src := newBuffer(t, 7, 5, pattern)
	dst, err := resample.Resample(src, 1, kernel.AlgorithmBilinear, resample.Hooks{})
	require.NoError(t, err)
	assert.Equal(t, src.Width(), dst.Width())
	assert.Equal(t, src.Height(), dst.Height())
	assert.Equal(t, src.Pix(), dst.Pix())
}

func TestCornersPreserved(t *testing.T) {
	src := newBuffer(t, 2, 2, corners2x2)
	for _, scale := range []float64{2, 3, 4} {
		t.Run(fmt.Sprintf(`x%v`, scale), func(t *testing.T) {
			dst, err := resample.Resample(src, scale, kernel.AlgorithmBilinear, resample.Hooks{})
			require.NoError(t, err)
			n := int(2 * scale)
			require.Equal(t, n, dst.Width())
			require.Equal(t, n, dst.Height())
			assert.Equal(t, red, dst.RGBA(0, 0))
			assert.Equal(t, green, dst.RGBA(n-1, 0))
			assert.Equal(t, blue, dst.RGBA(0, n-1))
			assert.Equal(t, white, dst.RGBA(n-1, n-1))
		})
	}
}

func TestBilinear2x2By2(t *testing.T) {
	src := newBuffer(t, 2, 2, corners2x2)
	dst, err := resample.Resample(src, 2, kernel.AlgorithmBilinear, resample.Hooks{})
	require.NoError(t, err)
	require.Equal(t, 4, dst.Width())
	require.Equal(t, 4, dst.Height())

	// first row: clamped vertically, 3/4 of the nearer corner
	assert.Equal(t, red, dst.RGBA(0, 0))
	assert.Equal(t, [4]uint8{191, 64, 0, 255}, dst.RGBA(1, 0))
	assert.Equal(t, [4]uint8{64, 191, 0, 255}, dst.RGBA(2, 0))
	assert.Equal(t, green, dst.RGBA(3, 0))

	// (1,1): 9/16 red, 3/16 green, 3/16 blue, 1/16 white
	assert.Equal(t, [4]uint8{159, 64, 64, 255}, dst.RGBA(1, 1))
	// (2,2): 9/16 white, 3/16 green, 3/16 blue, 1/16 red
	assert.Equal(t, [4]uint8{159, 191, 191, 255}, dst.RGBA(2, 2))

	assert.Equal(t, blue, dst.RGBA(0, 3))
	assert.Equal(t, white, dst.RGBA(3, 3))
}

func TestSinglePixel(t *testing.T) {
	c := [4]uint8{12, 34, 56, 78}
	src := newBuffer(t, 1, 1, testutil.Uniform(c))
	for _, alg := range kernel.All() {
		for _, scale := range []float64{1, 2.5, 3, 4} {
			t.Run(fmt.Sprintf(`%s_x%v`, alg, scale), func(t *testing.T) {
				dst, err := resample.Resample(src, scale, alg, resample.Hooks{})
				require.NoError(t, err)
				n := int(math.Floor(scale))
				require.Equal(t, n, dst.Width())
				require.Equal(t, n, dst.Height())
				for y := 0; y < n; y++ {
					for x := 0; x < n; x++ {
						assert.Equal(t, c, dst.RGBA(x, y), `(%d,%d)`, x, y)
					}
				}
			})
		}
	}
}

func TestWeightsNormalized(t *testing.T) {
	// opaque sources keep full alpha everywhere only if every destination
	// pixel gathered a positive total weight
	src := newBuffer(t, 9, 6, testutil.Opaque)
	for _, alg := range kernel.All() {
		for _, scale := range []float64{1, 1.5, 2, 3, 4, 0.5} {
			t.Run(fmt.Sprintf(`%s_x%v`, alg, scale), func(t *testing.T) {
				dst, err := resample.Resample(src, scale, alg, resample.Hooks{})
				require.NoError(t, err)
				assert.Equal(t, int(math.Floor(9*scale)), dst.Width())
				assert.Equal(t, int(math.Floor(6*scale)), dst.Height())
				pix := dst.Pix()
				for i := 3; i < len(pix); i += 4 {
					if pix[i] != 255 {
						t.Fatalf(`alpha at byte %d: %d`, i, pix[i])
					}
				}
			})
		}
	}
}

func TestUniformStaysUniform(t *testing.T) {
	c := [4]uint8{200, 100, 50, 128}
	src := newBuffer(t, 5, 4, testutil.Uniform(c))
	for _, alg := range kernel.All() {
		dst, err := resample.Resample(src, 3, alg, resample.Hooks{})
		require.NoError(t, err)
		for y := 0; y < dst.Height(); y++ {
			for x := 0; x < dst.Width(); x++ {
				require.Equal(t, c, dst.RGBA(x, y), `%s (%d,%d)`, alg, x, y)
			}
		}
	}
}

func TestSourceUntouched(t *testing.T) {
	src := newBuffer(t, 4, 4, pattern)
	orig := append([]uint8(nil), src.Pix()...)
	_, err := resample.Resample(src, 2, kernel.AlgorithmLanczos3, resample.Hooks{})
	require.NoError(t, err)
	assert.Equal(t, orig, src.Pix())
}

func TestProgress(t *testing.T) {
	src := newBuffer(t, 10, 10, pattern)
	var reports []int
	dst, err := resample.Resample(src, 4, kernel.AlgorithmBicubic, resample.Hooks{
		Progress: func(percent int) { reports = append(reports, percent) },
	})
	require.NoError(t, err)
	require.NotNil(t, dst)
	require.NotEmpty(t, reports)
	last := 0
	for _, p := range reports {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
		assert.GreaterOrEqual(t, p-last, 5)
		last = p
	}
	// 40 rows: rows 2, 4, ..., 38 report 5, 10, ..., 95
	assert.Len(t, reports, 19)
	assert.Equal(t, 95, reports[len(reports)-1])
}

func TestProgressStep(t *testing.T) {
	e, err := resample.New(resample.SetProgressStep(25))
	require.NoError(t, err)
	src := newBuffer(t, 10, 10, pattern)
	var reports []int
	_, err = e.Resample(src, 2, kernel.AlgorithmBilinear, resample.Hooks{
		Progress: func(percent int) { reports = append(reports, percent) },
	})
	require.NoError(t, err)
	assert.Equal(t, []int{25, 50, 75}, reports)

	_, err = resample.New(resample.SetProgressStep(0))
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	src := newBuffer(t, 10, 10, pattern)
	var polls int
	var reports []int
	dst, err := resample.Resample(src, 2, kernel.AlgorithmLanczos3, resample.Hooks{
		Cancelled: func() bool { polls++; return polls > 3 },
		Progress:  func(percent int) { reports = append(reports, percent) },
	})
	assert.Nil(t, dst)
	assert.True(t, errors.Is(err, resample.ErrCancelled))
	assert.Equal(t, 4, polls)
	// three of twenty rows completed
	assert.Equal(t, []int{5, 10}, reports)
}

func TestCancelBeforeStart(t *testing.T) {
	src := newBuffer(t, 2, 2, pattern)
	dst, err := resample.Resample(src, 2, kernel.AlgorithmBilinear, resample.Hooks{
		Cancelled: func() bool { return true },
	})
	assert.Nil(t, dst)
	assert.True(t, errors.Is(err, resample.ErrCancelled))
}

func TestInvalidInput(t *testing.T) {
	src := newBuffer(t, 2, 2, pattern)
	for _, scale := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := resample.Resample(src, scale, kernel.AlgorithmBilinear, resample.Hooks{})
		assert.True(t, errors.Is(err, resample.ErrInvalidScale), `scale %v`, scale)
	}

	// floor(2*0.25) == 0
	_, err := resample.Resample(src, 0.25, kernel.AlgorithmBilinear, resample.Hooks{})
	assert.True(t, errors.Is(err, resample.ErrInvalidDimensions))

	_, err = resample.Resample(src, 2, kernel.Algorithm(-1), resample.Hooks{})
	assert.True(t, errors.Is(err, kernel.ErrUnknownAlgorithm))

	_, err = resample.Resample(nil, 2, kernel.AlgorithmBilinear, resample.Hooks{})
	assert.Error(t, err)

	moved, err := src.Transfer()
	require.NoError(t, err)
	_, err = resample.Resample(src, 2, kernel.AlgorithmBilinear, resample.Hooks{})
	assert.True(t, errors.Is(err, pixbuf.ErrReleased))
	_, err = resample.Resample(moved, 2, kernel.AlgorithmBilinear, resample.Hooks{})
	assert.NoError(t, err)
}

func TestAllocatorFailure(t *testing.T) {
	failing := func(w, h int) (*pixbuf.Buffer, error) {
		return nil, errors.Errorf(`%w: test`, pixbuf.ErrAllocation)
	}
	e, err := resample.New(resample.SetAllocator(failing))
	require.NoError(t, err)
	src := newBuffer(t, 2, 2, pattern)
	dst, err := e.Resample(src, 2, kernel.AlgorithmBicubic, resample.Hooks{})
	assert.Nil(t, dst)
	assert.True(t, errors.Is(err, pixbuf.ErrAllocation))

	mismatch := func(w, h int) (*pixbuf.Buffer, error) { return pixbuf.New(1, 1) }
	e, err = resample.New(resample.SetAllocator(mismatch))
	require.NoError(t, err)
	_, err = e.Resample(src, 2, kernel.AlgorithmBicubic, resample.Hooks{})
	assert.True(t, errors.Is(err, pixbuf.ErrAllocation))
}

func TestDestSize(t *testing.T) {
	w, h, err := resample.DestSize(5, 3, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, 4, h)
}

func BenchmarkResample(b *testing.B) {
	src, err := pixbuf.New(64, 64)
	require.NoError(b, err)
	for _, alg := range kernel.All() {
		b.Run(alg.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := resample.Resample(src, 4, alg, resample.Hooks{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
