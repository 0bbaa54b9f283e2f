// Package admin is the ambient HTTP observability/control surface that sits
// alongside the RESP/TCP data plane: health, keyspace stats, and a
// session-gated destructive flush. It exposes no RESP functionality
// (spec.md §6 scopes the protocol to TCP only); it mirrors the small gin +
// cors + secure + sessions admin surface the teacher ships next to its
// domain logic (cmd/zmux-server/main.go), reusing the exact stack for the
// exact same purpose.
package admin

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kvsrv/kvsrv/internal/store"
)

// demoAdminToken gates /admin/flushall. A fixed demo credential, same shape
// as the teacher's demo bearer token (internal/http/middleware/auth.go) —
// fine for the debug surface this guards, not meant to be a real auth
// system.
const demoAdminToken = "kvsrv-admin-debug-token"

// Server is the admin HTTP surface.
type Server struct {
	log    *zap.Logger
	ks     *store.Keyspace
	sg     singleflight.Group
	router *gin.Engine
}

// New builds the admin router. isDev enables CORS for the local dev
// dashboard origin the way cmd/zmux-server/main.go does for its own CORS
// setup; session cookie options are the same in both modes.
func New(log *zap.Logger, ks *store.Keyspace, isDev bool) *Server {
	log = log.Named("admin")
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(secure.New(secure.Config{
		SSLRedirect:           false,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		STSSeconds:            0,
		STSIncludeSubdomains:  false,
		ContentSecurityPolicy: "default-src 'none'",
	}))
	if isDev {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	cookieStore := cookie.NewStore([]byte("kvsrv-admin-session-demo-secret"))
	r.Use(sessions.Sessions("kvsrv_admin", cookieStore))

	s := &Server{log: log, ks: ks, router: r}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/stats", s.handleStats)
	s.router.POST("/admin/login", s.handleLogin)
	s.router.POST("/admin/flushall", s.requireSession, s.handleFlushAll)
}

// Run serves the admin surface on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", zap.String("addr", addr))
	if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	v, err, _ := s.sg.Do("stats", func() (any, error) {
		return s.ks.Stats(), nil
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	st := v.(store.Stats)
	c.JSON(http.StatusOK, gin.H{"shards": st.Shards, "keys": st.Keys})
}

func (s *Server) handleLogin(c *gin.Context) {
	_, token, hasAuth := c.Request.BasicAuth()
	if !hasAuth || subtle.ConstantTimeCompare([]byte(token), []byte(demoAdminToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	sess := sessions.Default(c)
	sess.Set("admin", true)
	if err := sess.Save(); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) requireSession(c *gin.Context) {
	sess := sessions.Default(c)
	if ok, _ := sess.Get("admin").(bool); !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}

func (s *Server) handleFlushAll(c *gin.Context) {
	s.ks.FlushAll()
	s.log.Warn("keyspace flushed via admin surface")
	c.Status(http.StatusNoContent)
}
