//go:build linux

package workload

import "golang.org/x/sys/unix"

// allocate maps anonymous memory and populates it up front so the first
// measured round does not pay for page faults.
func allocate(size int) ([]byte, func([]byte) error, error) {
	buf, err := unix.Mmap(
		-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_POPULATE,
	)
	if err != nil {
		return nil, nil, err
	}

	return buf, unix.Munmap, nil
}
