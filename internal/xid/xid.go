// Package xid generates prefix-tagged ids like "shift-1712...-a1b2c3".
// Ids sort roughly by creation time thanks to the timestamp component.
package xid

import (
	"crypto/rand"
	"fmt"
	"time"
)

func New(prefix string) string {
	ts := time.Now().UnixNano()
	var suffix [8]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		// The nanosecond timestamp alone is unique enough within one process.
		return fmt.Sprintf("%s-%d", prefix, ts)
	}
	return fmt.Sprintf("%s-%d-%x", prefix, ts, suffix)
}
