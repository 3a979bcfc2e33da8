package router

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-veracity/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/item"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/product"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/session"
	"github.com/ovaphlow/pitchfork/service-veracity/internal/user"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// Handlers groups the feature handlers mounted by RegisterRoutes.
type Handlers struct {
	Users    *user.Handler
	Products *product.Handler
	Items    *item.Handler
	Gate     *session.Gate
}

// Options tunes the middleware stack.
type Options struct {
	// Origin is the single browser origin allowed to send credentialed requests.
	Origin string
	// RateLimit is the per-IP request budget per minute on register and login.
	RateLimit int
	// Development relaxes the secure headers for plain HTTP.
	Development bool
}

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs every request at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", w.Header().Get(RequestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// RecoverMiddleware turns a handler panic into a 500 response.
func RecoverMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Errorw("handler panic",
						"request_id", w.Header().Get(RequestIDHeader),
						"path", r.URL.Path,
						"panic", rec,
					)
					httpx.Error(w, http.StatusInternalServerError, httpx.MsgServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets the usual browser hardening headers.
func SecurityHeadersMiddleware(logger *zap.SugaredLogger, development bool) func(http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer-when-downgrade",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		STSSeconds:            2592000,
		STSIncludeSubdomains:  true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         development,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sm.Process(w, r); err != nil {
				logger.Warnw("secure headers blocked request", "err", err)
				httpx.Error(w, http.StatusBadRequest, "request blocked")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows credentialed requests from origin and answers preflights.
// An empty origin disables CORS headers entirely.
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin != "" && r.Header.Get("Origin") == origin {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
					h.Set("Access-Control-Max-Age", "600")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits requests per client IP per minute.
func RateLimitMiddleware(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Error(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

// RegisterRoutes mounts the API on an http.ServeMux and wraps it with the middleware
// stack.
func RegisterRoutes(logger *zap.SugaredLogger, h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	gated := func(fn http.HandlerFunc) http.Handler {
		return h.Gate.Middleware(fn)
	}
	// register and login share one per-IP budget
	limited := func(fn http.HandlerFunc) http.Handler { return fn }
	if opts.RateLimit > 0 {
		limiter := RateLimitMiddleware(opts.RateLimit)
		limited = func(fn http.HandlerFunc) http.Handler { return limiter(fn) }
	}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("POST /api/register", limited(h.Users.Register))
	mux.Handle("POST /api/login", limited(h.Users.Login))
	mux.Handle("GET /api/auth", gated(h.Users.Auth))
	mux.HandleFunc("GET /api/logout", h.Users.Logout)

	mux.HandleFunc("POST /api/get-one-product", h.Products.GetOne)
	mux.Handle("POST /api/upload-products", gated(h.Products.Upload))

	mux.Handle("POST /api/create-items", gated(h.Items.Create))
	mux.Handle("GET /api/get-items", gated(h.Items.List))
	mux.Handle("POST /api/start-item", gated(h.Items.Start))
	mux.Handle("POST /api/close-item", gated(h.Items.Close))

	var handler http.Handler = mux
	handler = CORSMiddleware(opts.Origin)(handler)
	handler = SecurityHeadersMiddleware(logger, opts.Development)(handler)
	handler = RecoverMiddleware(logger)(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}
