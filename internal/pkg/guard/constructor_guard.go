// Package guard provides ConstructorGuard, a marker embedded in value objects,
// aggregates and commands so that zero values can be told apart from instances
// built through their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the object was not constructed
// and the caller passed a nil validation error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing object was produced by its constructor.
// The zero value reports "not constructed".
//
// Example usage:
//
//	var ErrStopNotConstructed = errors.New("Stop must be created via NewStop")
//
//	type Stop struct {
//	    id    kernel.UUID
//	    guard guard.ConstructorGuard
//	}
//
//	func NewStop(id kernel.UUID) (*Stop, error) {
//	    return &Stop{id: id, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (s *Stop) Validate() error {
//	    return s.guard.Validate(ErrStopNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marking its owner as properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for constructed owners. Otherwise it returns validationError,
// or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
