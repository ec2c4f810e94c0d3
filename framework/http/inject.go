package http

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/arcframework/arc/framework/container"
)

var (
	requestType    = reflect.TypeOf((*Request)(nil))
	responseType   = reflect.TypeOf((*Response)(nil))
	rawRequestType = reflect.TypeOf((*http.Request)(nil))
	writerType     = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	contextType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

// Handle bridges a container-injected handler function to http.HandlerFunc —
// the Go spelling of Laravel's controller method injection.
//
// The handler's parameters are filled per call: *Request, *Response,
// *http.Request, http.ResponseWriter and context.Context come from the
// request itself; every other parameter is resolved from the container using
// the request context, so scoped services land in the request's scope. An
// optional trailing error return turns into a 500 response.
//
//	router.Get("/users/{id}", gohttp.Handle(app.Container,
//	    func(req *gohttp.Request, res *gohttp.Response, users *UserService) error {
//	        u, err := users.Find(req.Context(), req.RouteParam("id"))
//	        if err != nil {
//	            return err
//	        }
//	        res.Success(u)
//	        return nil
//	    },
//	))
func Handle(c *container.Container, handler any) http.HandlerFunc {
	fn := reflect.ValueOf(handler)
	t := fn.Type()
	if t.Kind() != reflect.Func || t.IsVariadic() {
		panic("http.Handle: handler must be a non-variadic function")
	}
	if t.NumOut() > 1 || (t.NumOut() == 1 && !t.Out(0).Implements(errorType)) {
		panic("http.Handle: handler may return nothing or a single error")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		args := make([]reflect.Value, t.NumIn())
		for i := 0; i < t.NumIn(); i++ {
			switch in := t.In(i); in {
			case requestType:
				args[i] = reflect.ValueOf(NewRequest(r))
			case responseType:
				args[i] = reflect.ValueOf(NewResponse(w))
			case rawRequestType:
				args[i] = reflect.ValueOf(r)
			case writerType:
				args[i] = reflect.ValueOf(w)
			case contextType:
				args[i] = reflect.ValueOf(r.Context())
			default:
				dep, err := c.Resolve(r.Context(), in)
				if err != nil {
					slog.Error("handler dependency resolution failed",
						"path", r.URL.Path, "dependency", in.String(), "error", err)
					NewResponse(w).ServerError()
					return
				}
				if dep == nil {
					args[i] = reflect.Zero(in)
				} else {
					args[i] = reflect.ValueOf(dep)
				}
			}
		}

		out := fn.Call(args)
		if t.NumOut() == 1 && !out[0].IsNil() {
			err := out[0].Interface().(error)
			slog.Error("handler failed", "path", r.URL.Path, "error", err)
			NewResponse(w).ServerError()
		}
	}
}
