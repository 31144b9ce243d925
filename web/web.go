// Package web provides the web server of the telemetry dashboard: routing, templates,
// cookie sessions and the embedded page and translation files.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/apextelemetry/apextelemetry/config"
	"github.com/apextelemetry/apextelemetry/database/model"
	"github.com/apextelemetry/apextelemetry/f1api"
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/util/common"
	"github.com/apextelemetry/apextelemetry/util/random"
	"github.com/apextelemetry/apextelemetry/web/controller"
	"github.com/apextelemetry/apextelemetry/web/locale"
	"github.com/apextelemetry/apextelemetry/web/middleware"
	"github.com/apextelemetry/apextelemetry/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

const basePath = "/"

// Options are the collaborators of the server. Zero values are replaced with the
// production implementations built from config.
type Options struct {
	Drivers   service.DriverClient
	Notifier  service.Notifier
	SecretKey []byte
}

// Server represents the dashboard web server with its controllers and services.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	opts     Options
	services controller.Services

	index *controller.IndexController
	panel *controller.PanelController
	api   *controller.APIController

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer(opts Options) *Server {
	if opts.Drivers == nil {
		opts.Drivers = f1api.NewClient(config.GetDriverAPIURL(), 0)
	}
	if opts.Notifier == nil {
		opts.Notifier = service.NewNotificationService(config.GetMailConfig())
	}
	if len(opts.SecretKey) == 0 {
		if key := config.GetSecretKey(); key != "" {
			opts.SecretKey = []byte(key)
		} else {
			logger.Warning("SECRET_KEY is not set, sessions will not survive a restart")
			opts.SecretKey = random.Key(32)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts: opts,
		services: controller.Services{
			Users:       &service.UserService{},
			Sessions:    service.NewRaceSessionService(opts.Drivers, opts.Notifier, nil),
			Comparisons: service.NewComparisonService(opts.Drivers),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// getHtmlTemplate parses embedded HTML templates from the bundled `htmlFS`.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"i18n": locale.I18n,
		"date": func(t time.Time) string {
			return t.Format(model.DateLayout)
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
		"lapTime": common.FormatLapTime,
		"gap": func(a, b float64) string {
			return common.FormatGap(b - a)
		},
	}
}

// Handler builds the gin engine with every middleware and route registered.
func (s *Server) Handler() (http.Handler, error) {
	return s.initRouter()
}

// initRouter initializes Gin, registers middleware, templates and controllers
// and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}

	engine := gin.Default()

	store := cookie.NewStore(s.opts.SecretKey)
	store.Options(sessions.Options{
		Path:     basePath,
		MaxAge:   config.GetSessionMaxAge() * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(config.GetName(), store))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})

	// gzip, excluding the JSON endpoints polled by the charts
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "panel/api/"}),
		gzip.WithExcludedPathsRegexs([]string{`/data$`}),
	))

	funcMap := templateFuncs()
	engine.SetFuncMap(funcMap)
	tpl, err := s.getHtmlTemplate(funcMap)
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tpl)

	engine.Use(locale.LocalizerMiddleware())
	engine.Use(middleware.Identity(s.services.Users))
	engine.Use(middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(config.GetLoginRateLimit())))
	engine.Use(middleware.RedirectMiddleware(basePath))

	g := engine.Group(basePath)
	s.index = controller.NewIndexController(g, s.services.Users)
	s.panel = controller.NewPanelController(g, s.services)
	s.api = controller.NewAPIController(g, s.services.Sessions)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the web server.
func (s *Server) Stop() error {
	s.cancel()
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if errors.Is(err2, net.ErrClosed) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }
