// Package rall looks up every resizer backend by name.
package rall

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/util"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/resize"
	"github.com/srlehn/upscaler/resize/bild"
	"github.com/srlehn/upscaler/resize/caire"
	"github.com/srlehn/upscaler/resize/gift"
	"github.com/srlehn/upscaler/resize/imaging"
	"github.com/srlehn/upscaler/resize/native"
	"github.com/srlehn/upscaler/resize/nfnt"
	"github.com/srlehn/upscaler/resize/rdefault"
	"github.com/srlehn/upscaler/resize/rez"
	"github.com/srlehn/upscaler/resize/xdraw"
)

const Native = `native`

type constructor func(alg kernel.Algorithm) (resize.Resizer, error)

func fixed(fn func(kernel.Algorithm) resize.Resizer) constructor {
	return func(alg kernel.Algorithm) (resize.Resizer, error) {
		if _, err := alg.Kernel(); err != nil {
			return nil, err
		}
		return fn(alg), nil
	}
}

var backends = map[string]constructor{
	Native:    fixed(func(alg kernel.Algorithm) resize.Resizer { return native.New(alg) }),
	`xdraw`:   xdraw.Kernel,
	`nfnt`:    fixed(func(alg kernel.Algorithm) resize.Resizer { return nfnt.New(alg) }),
	`gift`:    fixed(func(alg kernel.Algorithm) resize.Resizer { return gift.New(alg) }),
	`imaging`: fixed(func(alg kernel.Algorithm) resize.Resizer { return imaging.New(alg) }),
	`bild`:    fixed(func(alg kernel.Algorithm) resize.Resizer { return bild.New(alg) }),
	`rez`:     fixed(func(alg kernel.Algorithm) resize.Resizer { return rez.New(alg) }),
	// algorithm independent
	`caire`:   fixed(func(kernel.Algorithm) resize.Resizer { return caire.New() }),
	`default`: fixed(func(kernel.Algorithm) resize.Resizer { return &rdefault.Resizer{} }),
}

// Names lists the backend names in sorted order.
func Names() []string { return util.MapsKeysSorted(backends) }

// ByName returns the backend called name configured for alg.
// Names are matched case and separator insensitive.
func ByName(name string, alg kernel.Algorithm) (resize.Resizer, error) {
	c, ok := backends[strings.ReplaceAll(strcase.ToSnake(strings.TrimSpace(name)), `_`, ``)]
	if !ok {
		return nil, errors.Errorf(`%w: %q`, resize.ErrUnknownResizer, name)
	}
	return c(alg)
}
