package player

import "time"

const (
	testEventuallyTimeout = 500 * time.Millisecond
	testEventuallyTick    = 5 * time.Millisecond
)
