package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ChristopherDeLaRosa/academia/core"
	"github.com/ChristopherDeLaRosa/academia/core/academic"
	"github.com/ChristopherDeLaRosa/academia/core/grading"
	"github.com/ChristopherDeLaRosa/academia/core/report"
	"github.com/ChristopherDeLaRosa/academia/core/user"
)

const apiV1 = "/v1"

type Options struct {
	Addr           string
	DisableReqLogs bool

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator

	UserSvc     *user.Service
	AcademicSvc *academic.Service
	GradingSvc  *grading.Service
	ReportSvc   *report.Service
}

type Server interface {
	http.Handler
	Start() error
	Stop(ctx context.Context) error
}

type server struct {
	*Options
	app *echo.Echo
}

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		Options: opts,
		app:     echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, func() {
		go func() { _ = s.Stop(context.Background()) }()
	})

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.Recover())

	s.registerRoutes()
}

func (s *server) registerRoutes() {
	jwt := middleware.JWTWithConfig(newJWTConfig(s.Conf))

	v1 := s.app.Group(apiV1)
	registerAuthAPI(v1, jwt, s.Conf, s.UserSvc, s.Validate)
	registerAcademicAPI(v1, jwt, s.AcademicSvc)
	registerGradingAPI(v1, jwt, s.GradingSvc, s.Validate)
	registerReportAPI(v1, jwt, s.ReportSvc)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.app.ServeHTTP(w, r) }

func (s *server) Start() error { return s.app.Start(s.Addr) }

func (s *server) Stop(ctx context.Context) error { return s.app.Shutdown(ctx) }
