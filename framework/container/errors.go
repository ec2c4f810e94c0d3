package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNilConstructor is returned when Bind or Invoke receives nil.
	ErrNilConstructor = errors.New("constructor must not be nil")

	// ErrNotAFunction is returned when a constructor is not a function.
	ErrNotAFunction = errors.New("constructor must be a function")

	// ErrVariadicConstructor is returned for variadic constructors, which
	// cannot be auto-wired.
	ErrVariadicConstructor = errors.New("variadic constructor is not supported")

	// ErrNoProvides is returned when a deferred provider declares nothing.
	ErrNoProvides = errors.New("deferred provider declares an empty Provides list")

	// ErrNotProvided is returned when a service type is deferred to a provider
	// that does not declare it.
	ErrNotProvided = errors.New("service type is not declared by the deferred provider")
)

// LifetimeUnsupportedError reports a Bind call with an unknown lifetime.
type LifetimeUnsupportedError Lifetime

func (err LifetimeUnsupportedError) Error() string {
	return fmt.Sprintf("lifetime %d is unsupported", int(err))
}

// BadConstructorError reports a constructor that does not match any of the
// supported shapes: func([ctx,] deps...) T or func([ctx,] deps...) (T, error).
type BadConstructorError struct {
	cause           error
	ConstructorType reflect.Type
}

func newBadConstructorError(cause error, constructorType reflect.Type) error {
	return &BadConstructorError{cause: cause, ConstructorType: constructorType}
}

func (err *BadConstructorError) Error() string {
	return fmt.Sprintf("bad constructor %s: %s", err.ConstructorType, err.cause)
}

func (err *BadConstructorError) Unwrap() error { return err.cause }

// UnregisteredDependencyError reports a request for a type that has no binding
// and cannot be auto-registered (interfaces and non-struct kinds).
type UnregisteredDependencyError struct {
	ServiceType reflect.Type
}

func (err *UnregisteredDependencyError) Error() string {
	return fmt.Sprintf("%s is not registered and cannot be constructed implicitly", err.ServiceType)
}

// CircularDependencyError reports a cycle in the resolution stack. Cycle holds
// the full traversal order, starting and ending with the repeated type.
type CircularDependencyError struct {
	Cycle []reflect.Type
}

func (err *CircularDependencyError) Error() string {
	names := make([]string, len(err.Cycle))
	for i, t := range err.Cycle {
		names[i] = t.String()
	}
	return "circular dependency: " + strings.Join(names, " -> ")
}

// ParameterError reports a constructor parameter that cannot be auto-resolved:
// primitive and collection kinds are never injected unless explicitly bound.
type ParameterError struct {
	Constructor reflect.Type
	Index       int
	Param       reflect.Type
}

func (err *ParameterError) Error() string {
	return fmt.Sprintf(
		"parameter %d (%s) of %s cannot be resolved: bind it explicitly or give it a default",
		err.Index, err.Param, err.Constructor,
	)
}

// ResolutionError wraps any failure while building a service, carrying the
// service type and its lifetime for diagnostics.
type ResolutionError struct {
	cause       error
	ServiceType reflect.Type
	Lifetime    Lifetime
}

func newResolutionError(cause error, lifetime Lifetime, serviceType reflect.Type) error {
	return &ResolutionError{cause: cause, Lifetime: lifetime, ServiceType: serviceType}
}

func (err *ResolutionError) Error() string {
	return fmt.Sprintf("cannot build %s %s: %s", err.Lifetime, err.ServiceType, err.cause)
}

func (err *ResolutionError) Unwrap() error { return err.cause }

// ProviderError reports a deferred provider whose register or boot stage
// failed while being loaded just in time.
type ProviderError struct {
	cause    error
	Provider string
	Stage    string
}

func (err *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed during %s: %s", err.Provider, err.Stage, err.cause)
}

func (err *ProviderError) Unwrap() error { return err.cause }
