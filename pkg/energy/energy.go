package energy

// Source delivers consumption readings per meter id.
type Source interface {
	Open(connection string) error
	Readings(meterID int) ([]float64, error)
	Close() error
	String() string
}
