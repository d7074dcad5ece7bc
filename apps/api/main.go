package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/ChristopherDeLaRosa/academia/apps/api/echo"
	"github.com/ChristopherDeLaRosa/academia/core"
	"github.com/ChristopherDeLaRosa/academia/core/academic"
	"github.com/ChristopherDeLaRosa/academia/core/grading"
	"github.com/ChristopherDeLaRosa/academia/core/report"
	"github.com/ChristopherDeLaRosa/academia/core/user"
	"github.com/ChristopherDeLaRosa/academia/services/email"
	"github.com/ChristopherDeLaRosa/academia/services/logger"
	"github.com/ChristopherDeLaRosa/academia/storage/database"
	sqlxrepos "github.com/ChristopherDeLaRosa/academia/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if err := run(std); err != nil {
		std.Fatalf("main: %+v", err)
	}
}

func run(std *log.Logger) error {
	conf, err := core.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	var appLogger core.Logger = logsvc.NewStdLogger(std)
	if conf.RollbarToken != "" {
		appLogger = logsvc.NewRollbarLogger(std, conf)
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return errors.Wrap(err, "migrating database")
	}

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)
	grading.RegisterValidators(validate, translator)

	var emailSvc core.EmailService
	if conf.SendgridApiKey != "" {
		emailSvc = emailsvc.NewSendgridService(conf, appLogger)
	} else {
		emailSvc = emailsvc.NewConsoleService(conf)
	}
	auditSink := sqlxrepos.NewAuditSink(db, appLogger)

	academicRepo := sqlxrepos.NewAcademicRepository(db)
	rubricRepo := sqlxrepos.NewRubricRepository(db)
	entryRepo := sqlxrepos.NewEntryRepository(db)
	userRepo := sqlxrepos.NewUserRepository(db)

	userSvc := user.NewService(userRepo, emailSvc, auditSink)
	academicSvc := academic.NewService(academicRepo)
	gradingSvc := grading.NewService(rubricRepo, entryRepo, academicRepo, appLogger, auditSink)
	reportSvc := report.NewService(rubricRepo, entryRepo, academicRepo)

	server := echoapi.NewServer(&echoapi.Options{
		Addr:        conf.Server.Address(),
		Conf:        conf,
		Logger:      appLogger,
		Validate:    validate,
		Translator:  translator,
		UserSvc:     userSvc,
		AcademicSvc: academicSvc,
		GradingSvc:  gradingSvc,
		ReportSvc:   reportSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info(fmt.Sprintf("server listening on %s", conf.Server.Address()))
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")
	case sig := <-shutdown:
		appLogger.Info(fmt.Sprintf("shutdown started: %v", sig))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			return errors.Wrap(err, "stopping server")
		}
	}
	return nil
}
