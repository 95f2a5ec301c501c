package util_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srlehn/upscaler/internal/util"
)

func TestMapsKeysSorted(t *testing.T) {
	assert.Equal(t, []string{`a`, `b`, `c`}, util.MapsKeysSorted(map[string]int{`c`: 1, `a`: 2, `b`: 3}))
	assert.Nil(t, util.MapsKeysSorted[map[int]bool](nil))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0., util.Clamp(-0.5, 0, 255))
	assert.Equal(t, 255., util.Clamp(300., 0, 255))
	assert.Equal(t, 7, util.Clamp(7, 0, 9))
	assert.Equal(t, 9, util.Clamp(12, 0, 9))
	assert.True(t, math.IsNaN(util.Clamp(math.NaN(), 0, 1)))
}
