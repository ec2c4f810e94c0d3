package container_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arcframework/arc/framework/container"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ── registration ──────────────────────────────────────────────────────────────

func TestBind_RejectsNonFunction(t *testing.T) {
	c := container.New()

	err := c.Bind(container.Transient, 42)

	var badCtor *container.BadConstructorError
	require.Error(t, err)
	assert.True(t, errors.As(err, &badCtor))
}

func TestBind_RejectsNil(t *testing.T) {
	c := container.New()
	assert.ErrorIs(t, c.Bind(container.Transient, nil), container.ErrNilConstructor)
}

func TestBind_RejectsVariadicConstructor(t *testing.T) {
	c := container.New()

	err := c.Bind(container.Transient, func(labels ...string) *Widget { return &Widget{} })

	assert.ErrorIs(t, err, container.ErrVariadicConstructor)
}

func TestBind_RejectsBadReturnShapes(t *testing.T) {
	c := container.New()

	for name, ctor := range map[string]any{
		"no returns":        func() {},
		"error only":        func() error { return nil },
		"second not error":  func() (*Widget, *Widget) { return nil, nil },
		"three returns":     func() (*Widget, func(), error) { return nil, nil, nil },
		"context not first": func(w *Widget, ctx context.Context) *Engine { return nil },
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, c.Bind(container.Transient, ctor))
		})
	}
}

func TestBind_RejectsUnknownLifetime(t *testing.T) {
	c := container.New()
	err := c.Bind(container.Lifetime(42), func() *Widget { return &Widget{} })
	assert.Error(t, err)
}

// ── lifetimes ─────────────────────────────────────────────────────────────────

func TestSingleton_StableIdentity(t *testing.T) {
	c := container.New()
	calls, ctor := newEngineCounter()
	require.NoError(t, c.Bind(container.Singleton, ctor))

	first := container.MustResolve[*Engine](context.Background(), c)
	second := container.MustResolve[*Engine](context.Background(), c)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, calls.Load(), "constructor should run once")
}

func TestTransient_FreshInstances(t *testing.T) {
	c := container.New()
	calls, ctor := newEngineCounter()
	require.NoError(t, c.Bind(container.Transient, ctor))

	first := container.MustResolve[*Engine](context.Background(), c)
	second := container.MustResolve[*Engine](context.Background(), c)

	assert.NotSame(t, first, second)
	assert.EqualValues(t, 2, calls.Load(), "constructor should run per resolution")
}

func TestResolve_ContainerInjectsItself(t *testing.T) {
	c := container.New()

	type holder struct{ c *container.Container }
	require.NoError(t, c.Bind(container.Transient, func(inner *container.Container) *holder {
		return &holder{c: inner}
	}))

	h := container.MustResolve[*holder](context.Background(), c)
	assert.Same(t, c, h.c)

	direct := container.MustResolve[*container.Container](context.Background(), c)
	assert.Same(t, c, direct)
}

func TestResolve_NilContextTolerated(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Singleton, func() *Engine { return &Engine{ID: 7} }))

	v, err := c.Resolve(nil, container.TypeFor[*Engine]())
	require.NoError(t, err)
	assert.EqualValues(t, 7, v.(*Engine).ID)
}

// ── re-binding semantics ──────────────────────────────────────────────────────

func TestRebind_DoesNotReplaceBuiltSingleton(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Singleton, func() *Engine { return &Engine{ID: 1} }))

	first := container.MustResolve[*Engine](context.Background(), c)
	require.EqualValues(t, 1, first.ID)

	// Last write wins for the binding, but the built instance survives until
	// it is explicitly forgotten.
	require.NoError(t, c.Bind(container.Singleton, func() *Engine { return &Engine{ID: 2} }))
	assert.Same(t, first, container.MustResolve[*Engine](context.Background(), c))

	c.ForgetInstance(container.TypeFor[*Engine]())
	rebuilt := container.MustResolve[*Engine](context.Background(), c)
	assert.EqualValues(t, 2, rebuilt.ID)
	assert.NotSame(t, first, rebuilt)
}

func TestInstance_RegistersPrebuiltSingleton(t *testing.T) {
	c := container.New()
	engine := &Engine{ID: 99}
	c.Instance(engine)

	assert.Same(t, engine, container.MustResolve[*Engine](context.Background(), c))
	assert.True(t, c.Bound(container.TypeFor[*Engine]()))
}

func TestInstanceOf_KeysByInterface(t *testing.T) {
	c := container.New()
	container.InstanceOf[Greeter](c, staticGreeter{msg: "hi"})

	g := container.MustResolve[Greeter](context.Background(), c)
	assert.Equal(t, "hi", g.Greet())
}

// ── auto-registration ─────────────────────────────────────────────────────────

func TestAutoRegistration_ConcreteStructSucceeds(t *testing.T) {
	c := container.New()

	first, err := container.Resolve[*Widget](context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Implicit registrations are transient.
	second := container.MustResolve[*Widget](context.Background(), c)
	assert.NotSame(t, first, second)
}

func TestAutoRegistration_StructValueSucceeds(t *testing.T) {
	c := container.New()

	w, err := container.Resolve[Widget](context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, Widget{}, w)
}

func TestAutoRegistration_FillsInjectableFields(t *testing.T) {
	c := container.New()
	engine := &Engine{ID: 5}
	c.Instance(engine)
	container.InstanceOf[Greeter](c, staticGreeter{msg: "hello"})

	type consumer struct {
		Engine  *Engine
		Greeter Greeter
		Label   string // primitive field: stays zero
	}

	got := container.MustResolve[*consumer](context.Background(), c)
	assert.Same(t, engine, got.Engine)
	assert.Equal(t, "hello", got.Greeter.Greet())
	assert.Empty(t, got.Label)
}

func TestAutoRegistration_InterfaceFails(t *testing.T) {
	c := container.New()

	_, err := container.Resolve[Greeter](context.Background(), c)

	var unregistered *container.UnregisteredDependencyError
	require.Error(t, err)
	require.True(t, errors.As(err, &unregistered))
	assert.Equal(t, container.TypeFor[Greeter](), unregistered.ServiceType)
}

// ── constructor failures ──────────────────────────────────────────────────────

func TestResolve_PrimitiveParameterFails(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Transient, func(label string) *Widget {
		return &Widget{Label: label}
	}))

	_, err := container.Resolve[*Widget](context.Background(), c)

	var paramErr *container.ParameterError
	require.Error(t, err)
	require.True(t, errors.As(err, &paramErr))
	assert.Equal(t, 0, paramErr.Index)
	assert.Equal(t, container.TypeFor[string](), paramErr.Param)
}

func TestResolve_ExplicitlyBoundPrimitiveInjects(t *testing.T) {
	c := container.New()
	container.InstanceOf[string](c, "bound-label")
	require.NoError(t, c.Bind(container.Transient, func(label string) *Widget {
		return &Widget{Label: label}
	}))

	w := container.MustResolve[*Widget](context.Background(), c)
	assert.Equal(t, "bound-label", w.Label)
}

func TestResolve_ConstructorErrorPropagates(t *testing.T) {
	c := container.New()
	boom := errors.New("engine flooded")
	require.NoError(t, c.Bind(container.Singleton, func() (*Engine, error) {
		return nil, boom
	}))

	_, err := container.Resolve[*Engine](context.Background(), c)

	var resErr *container.ResolutionError
	require.Error(t, err)
	require.True(t, errors.As(err, &resErr))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, container.Singleton, resErr.Lifetime)
}

func TestResolve_ConstructorPanicBecomesError(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Transient, func() *Engine {
		panic("bad wiring")
	}))

	_, err := container.Resolve[*Engine](context.Background(), c)

	var resErr *container.ResolutionError
	require.Error(t, err)
	assert.True(t, errors.As(err, &resErr))
	assert.Contains(t, err.Error(), "bad wiring")
}

func TestResolve_FailureDoesNotPoisonLaterResolutions(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Transient, func(b *CycleB) *CycleA { return &CycleA{B: b} }))
	require.NoError(t, c.Bind(container.Transient, func(a *CycleA) *CycleB { return &CycleB{A: a} }))
	require.NoError(t, c.Bind(container.Singleton, func() *Engine { return &Engine{} }))

	_, err := container.Resolve[*CycleA](context.Background(), c)
	require.Error(t, err)

	// The failed resolution must not leave its stack behind.
	_, err = container.Resolve[*Engine](context.Background(), c)
	assert.NoError(t, err)
}

// ── cycle detection ───────────────────────────────────────────────────────────

func TestCycle_DirectReportsOrderedCycle(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Transient, func(b *CycleB) *CycleA { return &CycleA{B: b} }))
	require.NoError(t, c.Bind(container.Transient, func(a *CycleA) *CycleB { return &CycleB{A: a} }))

	_, err := container.Resolve[*CycleA](context.Background(), c)

	var cycleErr *container.CircularDependencyError
	require.Error(t, err)
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"*container_test.CycleA", "*container_test.CycleB", "*container_test.CycleA"},
		cycleNames(cycleErr))
}

func TestCycle_TransitiveReportsFullChain(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Transient, func(b *CycleB) *CycleA { return &CycleA{B: b} }))
	require.NoError(t, c.Bind(container.Transient, func(cc *CycleC) *CycleB { return &CycleB{} }))
	require.NoError(t, c.Bind(container.Transient, func(a *CycleA) *CycleC { return &CycleC{A: a} }))

	_, err := container.Resolve[*CycleA](context.Background(), c)

	var cycleErr *container.CircularDependencyError
	require.Error(t, err)
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{
		"*container_test.CycleA", "*container_test.CycleB", "*container_test.CycleC", "*container_test.CycleA",
	}, cycleNames(cycleErr))
}

func cycleNames(err *container.CircularDependencyError) []string {
	names := make([]string, len(err.Cycle))
	for i, typ := range err.Cycle {
		names[i] = typ.String()
	}
	return names
}

// ── contextual bindings ───────────────────────────────────────────────────────

type reportJob struct{ Greeter Greeter }

func TestContextual_OverridesDependencyForOneConsumer(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Transient, func() Greeter { return staticGreeter{msg: "default"} }))
	require.NoError(t, c.Bind(container.Transient, func(g Greeter) *reportJob { return &reportJob{Greeter: g} }))

	err := c.When(container.TypeFor[*reportJob]()).
		Needs(container.TypeFor[Greeter]()).
		Give(func() Greeter { return staticGreeter{msg: "contextual"} })
	require.NoError(t, err)

	job := container.MustResolve[*reportJob](context.Background(), c)
	assert.Equal(t, "contextual", job.Greeter.Greet())

	// The default binding is untouched for everyone else.
	g := container.MustResolve[Greeter](context.Background(), c)
	assert.Equal(t, "default", g.Greet())
}

func TestContextual_GiveValue(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Transient, func(g Greeter) *reportJob { return &reportJob{Greeter: g} }))

	err := c.When(container.TypeFor[*reportJob]()).
		Needs(container.TypeFor[Greeter]()).
		GiveValue(staticGreeter{msg: "pinned"})
	require.NoError(t, err)

	job := container.MustResolve[*reportJob](context.Background(), c)
	assert.Equal(t, "pinned", job.Greeter.Greet())
}

// ── Invoke ────────────────────────────────────────────────────────────────────

func TestInvoke_ResolvesParameters(t *testing.T) {
	c := container.New()
	engine := &Engine{ID: 3}
	c.Instance(engine)

	var seen *Engine
	err := c.Invoke(context.Background(), func(ctx context.Context, e *Engine) error {
		seen = e
		return nil
	})

	require.NoError(t, err)
	assert.Same(t, engine, seen)
}

func TestInvoke_ReturnsFunctionError(t *testing.T) {
	c := container.New()
	boom := errors.New("handler failed")

	err := c.Invoke(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestInvoke_UnresolvableParameterFails(t *testing.T) {
	c := container.New()

	err := c.Invoke(context.Background(), func(port int) {})

	var paramErr *container.ParameterError
	require.Error(t, err)
	assert.True(t, errors.As(err, &paramErr))
}

// ── misc ──────────────────────────────────────────────────────────────────────

func TestFlush_ResetsEverythingButSelfBinding(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(container.Singleton, func() *Engine { return &Engine{} }))
	_ = container.MustResolve[*Engine](context.Background(), c)

	c.Flush()

	assert.False(t, c.Bound(container.TypeFor[*Engine]()))
	assert.Same(t, c, container.MustResolve[*container.Container](context.Background(), c))
}

func TestMustResolve_PanicsOnFailure(t *testing.T) {
	c := container.New()
	assert.Panics(t, func() {
		container.MustResolve[Greeter](context.Background(), c)
	})
}

func TestLifetime_String(t *testing.T) {
	assert.Equal(t, "transient", container.Transient.String())
	assert.Equal(t, "scoped", container.Scoped.String())
	assert.Equal(t, "singleton", container.Singleton.String())
	assert.Equal(t, "unknown", fmt.Sprint(container.Lifetime(9)))
}
