package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/service"
)

// SessionCookieName is the cookie that ties a browser to its server-side
// authentication state.
const SessionCookieName = "session_id"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AuthModuleInterface defines the gate operations the middleware needs.
type AuthModuleInterface interface {
	ValidateRequest(ctx context.Context, req service.Request) (service.Decision, error)
	Identity(ctx context.Context, sessionID string) (*domainauth.SavedIdentity, error)
	CleanIdentity(ctx context.Context, sessionID string) error
}

// Gate adapts the authentication module to net/http middleware.
type Gate struct {
	Module       AuthModuleInterface
	ContextPath  string
	CookieDomain string
	Logger       *slog.Logger
}

func (g *Gate) logger() *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Protect returns a middleware that requires authentication. Unauthenticated
// requests are redirected to the identity provider and resumed after the
// round-trip completes.
func (g *Gate) Protect(next http.Handler) http.Handler {
	return g.handle(next, true)
}

// Observe returns a middleware that attaches identity information when the
// session is already authenticated, and otherwise lets the request through.
func (g *Gate) Observe(next http.Handler) http.Handler {
	return g.handle(next, false)
}

func (g *Gate) handle(next http.Handler, mandatory bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := g.buildRequest(w, r, mandatory)

		decision, err := g.Module.ValidateRequest(r.Context(), req)
		if err != nil {
			g.logger().ErrorContext(r.Context(), "request validation failed", "error", err)
			WriteError(w, ErrorParams{
				Code:    http.StatusInternalServerError,
				ErrCode: "authentication_error",
				Err:     errors.New("authentication error"),
			})
			return
		}

		switch decision.Status {
		case service.StatusAllowAnonymous:
			// Optional routes still benefit from knowing who is calling.
			if ident, lookupErr := g.Module.Identity(r.Context(), req.SessionID); lookupErr != nil {
				g.logger().WarnContext(r.Context(), "identity lookup failed", "error", lookupErr)
			} else if ident != nil {
				ctx := SetIdentityInContext(r.Context(), ident)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		case service.StatusAllowed, service.StatusContinue:
			ctx := SetIdentityInContext(r.Context(), decision.Identity)
			ctx = SetAuthTypeInContext(ctx, decision.AuthType)
			next.ServeHTTP(w, r.WithContext(ctx))
		case service.StatusRedirectToProvider, service.StatusRedirectResumed:
			http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		case service.StatusFailed:
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_failed",
				Err:     errors.New("authentication failed"),
			})
		default:
			g.logger().ErrorContext(r.Context(), "unknown validation status", "status", int(decision.Status))
			WriteError(w, ErrorParams{
				Code:    http.StatusInternalServerError,
				ErrCode: "authentication_error",
				Err:     errors.New("authentication error"),
			})
		}
	})
}

// buildRequest translates an incoming HTTP request into the module's view of
// it, minting a session cookie when the browser does not carry one yet.
func (g *Gate) buildRequest(w http.ResponseWriter, r *http.Request, mandatory bool) service.Request {
	secure := isSecureRequest(r)

	scheme := "http"
	if secure {
		scheme = "https"
	}

	host := r.Host
	port := 0
	if h, p, err := net.SplitHostPort(r.Host); err == nil {
		host = h
		if n, perr := strconv.Atoi(p); perr == nil {
			port = n
		}
	}

	return service.Request{
		Scheme:      scheme,
		Host:        host,
		Port:        port,
		ContextPath: g.ContextPath,
		Path:        r.URL.Path,
		RequestURI:  r.URL.RequestURI(),
		Query:       r.URL.Query(),
		SessionID:   g.sessionID(w, r, secure),
		Mandatory:   mandatory,
	}
}

// sessionID returns the browser's session identifier, minting one when absent.
func (g *Gate) sessionID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		Domain:   g.CookieDomain,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
