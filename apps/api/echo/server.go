package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/cohort"
	"github.com/codebox/didyoudoit/core/group"
	"github.com/codebox/didyoudoit/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		UserSvc       user.Service
		CohortSvc     cohort.Service
		GroupSvc      group.Service
		AssignmentSvc assignment.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		// ShutdownSignal is closed when an integrity failure requires the
		// process to go down.
		ShutdownSignal() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	initAuth(opts.Conf)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerCohortAPI(v1, jwt, s.opts.CohortSvc)
	registerGroupAPI(v1, jwt, s.opts.GroupSvc)
	registerAssignmentAPI(v1, jwt, s.opts.AssignmentSvc, s.opts.UserSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan struct{} {
	return s.shutdown
}

func (s *server) signalShutdown() {
	close(s.shutdown)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the DidYouDoIt API!")
}
