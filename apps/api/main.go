package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/codebox/didyoudoit/apps/api/echo"
	"github.com/codebox/didyoudoit/core"
	"github.com/codebox/didyoudoit/core/assignment"
	"github.com/codebox/didyoudoit/core/cohort"
	"github.com/codebox/didyoudoit/core/group"
	"github.com/codebox/didyoudoit/core/user"
	emailsvc "github.com/codebox/didyoudoit/services/email"
	logsvc "github.com/codebox/didyoudoit/services/logger"
	"github.com/codebox/didyoudoit/storage/database"
	sqlxrepos "github.com/codebox/didyoudoit/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	userRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(userRepo, mailSvc, conf)
	cohortSvc := cohort.NewService(sqlxrepos.NewCohortRepository(db))
	groupSvc := group.NewService(sqlxrepos.NewGroupRepository(db))
	assignmentSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db), userRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address:       conf.Server.APIHost,
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		CohortSvc:     cohortSvc,
		GroupSvc:      groupSvc,
		AssignmentSvc: assignmentSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	case <-server.ShutdownSignal():
		logger.Info("integrity issue: Start shutdown...")
	}

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
