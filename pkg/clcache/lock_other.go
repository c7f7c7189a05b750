//go:build !unix

package clcache

import "os"

// lockShared/lockExclusive degrade to no-ops on non-unix platforms, the
// same graceful-degradation pattern the teacher's build-tagged stub
// generators use for features a platform cannot support.
func lockShared(f *os.File) (unlock func(), err error) {
	return func() {}, nil
}

func lockExclusive(f *os.File) (unlock func(), err error) {
	return func() {}, nil
}
