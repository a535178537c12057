package grove

import (
	"errors"
	"fmt"
	"slices"
)

// Service is a named subsystem registered into a Services registry.
//
// Lifecycle:
//  1. Construction by the caller
//  2. Register
//  3. Init - in dependency order, once all services are registered
//  4. [runtime operation]
//  5. Close - in reverse init order
type Service interface {
	Name() string
}

// Dependent is implemented by services that must initialize after others.
type Dependent interface {
	Dependencies() []string
}

// Initializer is implemented by services that need setup after registration.
// The registry is passed so a service can look up its dependencies.
type Initializer interface {
	Init(s *Services) error
}

// Closer is implemented by services that release resources on teardown.
type Closer interface {
	Close() error
}

// Services is an explicit registry of named services, passed to whoever
// needs cross-subsystem lookup. It is not safe for concurrent use.
type Services struct {
	services    map[string]Service
	initialized []string // services whose Init succeeded, in order
}

// NewServices creates an empty registry.
func NewServices() *Services {
	return &Services{services: make(map[string]Service)}
}

// Register adds svc under svc.Name().
func (s *Services) Register(svc Service) error {
	name := svc.Name()
	if _, exists := s.services[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrServiceExists)
	}
	s.services[name] = svc
	return nil
}

// Unregister removes the service registered under name. It does not close it.
func (s *Services) Unregister(name string) error {
	if _, exists := s.services[name]; !exists {
		return fmt.Errorf("unregister %q: %w", name, ErrServiceNotFound)
	}
	delete(s.services, name)
	s.initialized = slices.DeleteFunc(s.initialized, func(n string) bool { return n == name })
	return nil
}

// Get retrieves a service by name.
func (s *Services) Get(name string) (Service, bool) {
	svc, ok := s.services[name]
	return svc, ok
}

// Names returns the registered names in sorted order.
func (s *Services) Names() []string {
	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup retrieves the service registered under name as a T.
func Lookup[T any](s *Services, name string) (T, error) {
	var zero T
	if s == nil {
		return zero, fmt.Errorf("lookup %q: %w", name, ErrServiceNotFound)
	}
	svc, ok := s.services[name]
	if !ok {
		return zero, fmt.Errorf("lookup %q: %w", name, ErrServiceNotFound)
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, fmt.Errorf("lookup %q: got %T: %w", name, svc, ErrServiceType)
	}
	return typed, nil
}

// MustLookup is Lookup that panics on failure.
func MustLookup[T any](s *Services, name string) T {
	t, err := Lookup[T](s, name)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// Init initializes every service in dependency order. On failure, services
// already initialized are closed in reverse order and the error is returned.
func (s *Services) Init() error {
	order, err := s.topologicalSort()
	if err != nil {
		return err
	}
	s.initialized = s.initialized[:0]
	for _, name := range order {
		if in, ok := s.services[name].(Initializer); ok {
			if err := in.Init(s); err != nil {
				closeErr := s.Close()
				return errors.Join(fmt.Errorf("service %q init: %w", name, err), closeErr)
			}
		}
		s.initialized = append(s.initialized, name)
	}
	return nil
}

// Close closes initialized services in reverse init order. Every service is
// closed even if some fail; the failures are joined.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.initialized) - 1; i >= 0; i-- {
		name := s.initialized[i]
		if c, ok := s.services[name].(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("service %q close: %w", name, err))
			}
		}
	}
	s.initialized = s.initialized[:0]
	return errors.Join(errs...)
}

// topologicalSort computes initialization order using Kahn's algorithm.
// Ties are broken by name so the order is deterministic.
func (s *Services) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(s.services))
	dependents := make(map[string][]string)

	for name := range s.services {
		inDegree[name] = 0
	}
	for name, svc := range s.services {
		d, ok := svc.(Dependent)
		if !ok {
			continue
		}
		for _, dep := range d.Dependencies() {
			if _, exists := s.services[dep]; !exists {
				return nil, fmt.Errorf("service %q depends on %q: %w", name, dep, ErrServiceNotFound)
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	slices.Sort(queue)

	result := make([]string, 0, len(s.services))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		next := dependents[name]
		slices.Sort(next)
		for _, dependent := range next {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(s.services) {
		return nil, ErrServiceCycle
	}
	return result, nil
}
