package portutil

import "hash/crc32"

const (
	minPort = 10000
	maxPort = 60000
)

// FromName derives a stable listen port in [10000, 60000) from a name.
// The same name always maps to the same port, so a service can bind a
// predictable port without any configuration. Different names may collide;
// for a single-service deployment that is acceptable.
func FromName(name string) int {
	sum := crc32.ChecksumIEEE([]byte(name))
	return minPort + int(sum%(maxPort-minPort))
}
