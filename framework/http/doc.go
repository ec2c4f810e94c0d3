// Package http provides Laravel-compatible request and response helpers, the
// per-request container scope middleware, and the injected-handler bridge.
//
// # Request
//
// Request wraps *http.Request with a fluent API mirroring Laravel's
// Illuminate\Http\Request.
//
//	req := gohttp.NewRequest(r)
//
//	// Bind JSON / form body into a struct
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	// Input retrieval (query string + POST body)
//	name  := req.Input("name", "default")
//	page  := req.Query("page", "1")
//	all   := req.All()          // map[string]string
//	ok    := req.Has("name")
//
//	// Route params (requires Chi router)
//	id := req.RouteParam("id")
//
//	// Headers and auth
//	token := req.BearerToken()
//	val   := req.Header("X-Custom")
//
//	// Validation — $request->validate([...])
//	if v := req.Validate(validation.Rules{"email": "required|email"}); v.Fails() { ... }
//
//	// File uploads
//	fh, err := req.File("avatar")
//	files, err := req.Files("attachments")
//
// # Response
//
// Response wraps http.ResponseWriter with helpers matching Laravel's
// response() helper and JsonResponse.
//
//	res := gohttp.NewResponse(w)
//
//	// JSON
//	res.JSON(200, data)           // raw JSON with status
//	res.Success(data)             // 200 {"data": ...}
//	res.Created(data)             // 201 {"data": ...}
//	res.NoContent()               // 204
//
//	// Errors
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.Unauthorized()            // 401 {"message": "Unauthenticated."}
//	res.Forbidden()               // 403 {"message": "This action is unauthorized."}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ServerError()             // 500 {"message": "Server Error."}
//	res.ValidationError(errs)     // 422 {"errors": {"field": ["msg"]}}
//
//	// Redirects
//	res.RedirectTo("/dashboard")      // 302
//	res.RedirectBack(r, "/fallback")  // 302 to Referer
//
// # Container integration
//
// ScopeMiddleware gives each request its own container scope; scoped services
// resolved during the request are disposed when the response is written.
// Handle turns a dependency-injected function into an http.HandlerFunc:
//
//	router.Middleware(gohttp.ScopeMiddleware(app.Container))
//	router.Get("/users", gohttp.Handle(app.Container,
//	    func(res *gohttp.Response, users *UserService) {
//	        res.Success(users.All())
//	    },
//	))
package http
