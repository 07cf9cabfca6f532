package config

import "time"

const (
	DefaultPort = "8080"

	DefaultDataServiceURL     = "http://localhost:8069"
	DefaultDataServiceDB      = "hotel"
	DefaultDataServiceTimeout = 30 * time.Second

	// Window width of the grid, in days, per render cycle.
	DefaultVisibleDays = 30

	// Room type rows of the management grid, comma separated.
	DefaultRoomTypes = "single,double,suite"

	// Delay before a pointer-down is treated as a drag rather than a click.
	DefaultActionDelay = 175 * time.Millisecond

	DefaultResizeDebounce = 300 * time.Millisecond
	DefaultScrollThrottle = 100 * time.Millisecond
	DefaultSearchThrottle = 70 * time.Millisecond

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
