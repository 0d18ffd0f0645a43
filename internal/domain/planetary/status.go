package planetary

// PinStatus is the display status of a pin at a point in time
type PinStatus string

const (
	// Extractors
	PinStatusPending PinStatus = "PENDING"
	PinStatusActive  PinStatus = "ACTIVE"
	PinStatusExpired PinStatus = "EXPIRED"

	// Factories
	PinStatusIdle    PinStatus = "IDLE"
	PinStatusStarved PinStatus = "STARVED"
	PinStatusRunning PinStatus = "RUNNING"

	// Storage
	PinStatusStorage PinStatus = "STORAGE"

	// Excluded from simulation
	PinStatusInactive PinStatus = "INACTIVE"
)

// IsProducing reports whether the pin is currently generating resources
func (s PinStatus) IsProducing() bool {
	return s == PinStatusActive || s == PinStatusRunning
}
