package container

import (
	"context"
	"reflect"
)

// Invoke calls fn with container-resolved arguments ("method injection").
// fn may take a leading context.Context, which receives ctx; every other
// parameter is resolved through the container. If fn's last return value is
// an error, Invoke returns it; other return values are discarded.
//
//	err := app.Invoke(ctx, func(cfg *config.Config, mailer mail.Mailer) error {
//	    return mailer.Send(ctx, welcome(cfg))
//	})
func (c *Container) Invoke(ctx context.Context, fn any) error {
	_, err := c.call(ctx, fn, &resolveState{})
	return err
}

// call resolves fn's parameters and invokes it, returning its results.
func (c *Container) call(ctx context.Context, fn any, st *resolveState) ([]reflect.Value, error) {
	if fn == nil {
		return nil, ErrNilConstructor
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, newBadConstructorError(ErrNotAFunction, t)
	}
	if t.IsVariadic() {
		return nil, newBadConstructorError(ErrVariadicConstructor, t)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	args := make([]reflect.Value, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		p := t.In(i)
		if p == contextType {
			if i != 0 {
				return nil, newBadConstructorError(ErrNotAFunction, t)
			}
			args = append(args, reflect.ValueOf(ctx))
			continue
		}
		if !c.Bound(p) && !injectableKind(p) {
			return nil, &ParameterError{Constructor: t, Index: i, Param: p}
		}
		dep, err := c.resolve(ctx, p, st)
		if err != nil {
			return nil, err
		}
		if dep == nil {
			args = append(args, reflect.Zero(p))
		} else {
			args = append(args, reflect.ValueOf(dep))
		}
	}

	out := v.Call(args)
	if n := t.NumOut(); n > 0 && t.Out(n-1).Implements(errorType) {
		if errV := out[n-1]; !errV.IsNil() {
			return out, errV.Interface().(error)
		}
	}
	return out, nil
}
