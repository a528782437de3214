package internal

// Handler registers its routes on a router. Feature packages implement
// this to keep route wiring next to the handlers.
//
//	type AuthHandler struct {
//	    repo *repository.Queries
//	}
//
//	func (h *AuthHandler) Routes(r forge.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc handles a single request. A non-nil error is passed to
// the configured ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc with cross-cutting behavior. It may
// short-circuit by not calling next.
//
//	func Auth(next forge.HandlerFunc) forge.HandlerFunc {
//	    return func(c forge.Context) error {
//	        if !c.IsAuthenticated() {
//	            return c.Error(401, "unauthorized")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler turns handler errors into responses.
type ErrorHandler func(Context, error) error
