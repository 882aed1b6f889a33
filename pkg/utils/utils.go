package utils

import (
	"runtime/debug"
	"time"
)

// ToPointer returns a pointer to the given value.
func ToPointer[T any](v T) *T {
	return &v
}

// TimeNowUTC returns the current time in UTC, truncated to the second.
func TimeNowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// GoSafe runs fn in a goroutine and swallows panics so a single bad task
// cannot take down the process.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				debug.PrintStack()
			}
		}()
		fn()
	}()
}
