package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvDataServiceURL      = "DATA_SERVICE_URL"
	EnvDataServiceDB       = "DATA_SERVICE_DB"
	EnvDataServiceUser     = "DATA_SERVICE_USER"
	EnvDataServicePassword = "DATA_SERVICE_PASSWORD"
	EnvDataServiceTimeout  = "DATA_SERVICE_TIMEOUT"

	EnvVisibleDays     = "VISIBLE_DAYS"
	EnvRoomTypes       = "ROOM_TYPES"
	EnvActionDelay     = "ACTION_DELAY"
	EnvResizeDebounce  = "RESIZE_DEBOUNCE"
	EnvScrollThrottle  = "SCROLL_THROTTLE"
	EnvSearchThrottle  = "SEARCH_THROTTLE"

	EnvAllowInvalidActions   = "ALLOW_INVALID_ACTIONS"
	EnvAssistedMovement      = "ASSISTED_MOVEMENT"
	EnvDivideRoomsByCapacity = "DIVIDE_ROOMS_BY_CAPACITY"
	EnvShowUnusedZones       = "SHOW_UNUSED_ZONES"
	EnvCountChildrenAsGuests = "COUNT_CHILDREN_AS_GUESTS"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
