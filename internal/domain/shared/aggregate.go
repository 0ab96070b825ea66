package shared

// InitialVersion is the version every aggregate starts with.
const InitialVersion = 1

// AggregateRoot is the base interface for all aggregate roots.
// The version is the optimistic concurrency token: it is bumped exactly once
// per successful write by the persistence layer, never by domain setters.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	Touch()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    InitialVersion,
	}
}
