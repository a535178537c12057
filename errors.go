package grove

import "errors"

var (
	ErrDuplicateComponent     = errors.New("grove: component type already attached")
	ErrComponentNotFound      = errors.New("grove: component not attached")
	ErrComponentOwned         = errors.New("grove: component already owned by another entity")
	ErrNilComponent           = errors.New("grove: component is nil")
	ErrEmptyComponentType     = errors.New("grove: empty component type name")
	ErrUnknownComponentType   = errors.New("grove: unknown component type")
	ErrDuplicateComponentType = errors.New("grove: component type already registered")
	ErrInvalidVec2            = errors.New("grove: invalid vec2")
	ErrInvalidColor           = errors.New("grove: invalid color")
	ErrInvalidProperty        = errors.New("grove: invalid property value")
	ErrInvalidPropertyType    = errors.New("grove: invalid property type tag")

	ErrServiceExists   = errors.New("grove: service already registered")
	ErrServiceNotFound = errors.New("grove: service not registered")
	ErrServiceType     = errors.New("grove: service type mismatch")
	ErrServiceCycle    = errors.New("grove: circular service dependency")
)
