// Package memguard refuses allocations that cannot fit into the memory
// currently available to the process.
package memguard

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
)

// Available reports the available system memory in bytes.
// It is a variable so tests can pin the value.
var Available = func() (uint64, bool) {
	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		return 0, false
	}
	return vm.Available, true
}

// Check returns an error wrapping consts.ErrAllocation when n bytes exceed
// the available memory. An unknown amount of available memory is not an error.
func Check(n uint64) error {
	avail, ok := Available()
	if !ok {
		return nil
	}
	if n > avail {
		return errors.Errorf(`%w: %d bytes requested, %d bytes available`, consts.ErrAllocation, n, avail)
	}
	return nil
}
