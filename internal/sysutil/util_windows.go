package sysutil

import "math"

// RlimitNoFile reports the current limit on the number of open files.
// Windows does not limit open handles in a comparable way.
func RlimitNoFile() (cur uint64, err error) {
	return math.MaxUint64, nil
}
