package prototype

import "errors"

var (
	ErrDuplicatePrototype = errors.New("duplicate prototype")
	ErrPrototypeNotFound  = errors.New("prototype not found")
	ErrPrototypeCycle     = errors.New("prototype parent cycle")
	ErrAbstractPrototype  = errors.New("prototype is abstract")
	// ErrStoreInUse rejects registration while a map load reads the store.
	ErrStoreInUse = errors.New("prototype store is in use by a load")
)
