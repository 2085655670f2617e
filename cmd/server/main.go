package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-face-attendance/internal/adapters/extractor/httpmodel"
	grpchandler "github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/handler"
	httphandler "github.com/ogurasousui/codex-face-attendance/internal/adapters/http/handler"
	"github.com/ogurasousui/codex-face-attendance/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"github.com/ogurasousui/codex-face-attendance/internal/core/outlet"
	"github.com/ogurasousui/codex-face-attendance/internal/core/roster"
	"github.com/ogurasousui/codex-face-attendance/internal/core/scan"
	"github.com/ogurasousui/codex-face-attendance/internal/platform/config"
	pg "github.com/ogurasousui/codex-face-attendance/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-face-attendance/internal/platform/server"
	"golang.org/x/sync/errgroup"
)

// 抽出のタイムアウトはスキャンのコンテキスト側で判定するため、HTTP クライアントには余裕を持たせる
const extractorClientSlack = 2 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	outletRepo := postgres.NewOutletRepository(dbPool)
	attendanceRepo := postgres.NewAttendanceRepository(dbPool)

	extractor, err := httpmodel.New(cfg.Extractor.Endpoint, cfg.Extractor.Timeout+extractorClientSlack)
	if err != nil {
		log.Fatalf("failed to initialize extractor client: %v", err)
	}
	if cfg.Extractor.Warmup {
		warmUp(ctx, extractor, cfg.Extractor.Timeout)
	}

	matcher, err := face.NewMatcher(cfg.Matcher.Threshold, face.WithParallelism(cfg.Matcher.ParallelMinCandidates, cfg.Matcher.Workers))
	if err != nil {
		log.Fatalf("failed to initialize matcher: %v", err)
	}

	policy, err := attendance.ParseLatenessPolicy(cfg.Attendance.WorkStart, cfg.Attendance.GracePeriod, cfg.Attendance.Location)
	if err != nil {
		log.Fatalf("failed to initialize lateness policy: %v", err)
	}

	rosterCache := roster.NewCache(employeeRepo, cfg.Roster.CacheTTL, nil, roster.WithLoadTimeout(cfg.Roster.LoadTimeout))
	attendanceSvc := attendance.NewService(attendanceRepo, nil, txManager, policy)
	outletSvc := outlet.NewService(outletRepo, nil, txManager)
	employeeSvc := employee.NewService(employeeRepo, extractor, nil, txManager,
		employee.WithAttendancePurger(attendanceRepo),
		employee.WithRosterInvalidator(rosterCache),
	)

	orchestrator, err := scan.NewOrchestrator(scan.Dependencies{
		Zones:      outletSvc,
		Extractor:  extractor,
		Candidates: rosterCache,
		Matcher:    matcher,
		Attendance: attendanceSvc,
	}, scan.WithExtractionTimeout(cfg.Extractor.Timeout))
	if err != nil {
		log.Fatalf("failed to initialize scan orchestrator: %v", err)
	}

	grpcServer := server.New(cfg.Server.ListenAddr, server.Services{
		Attendance: grpchandler.NewAttendanceGrpcHandler(orchestrator, attendanceSvc, cfg.Attendance.Location),
		Employee:   grpchandler.NewEmployeeGrpcHandler(employeeSvc),
		Outlet:     grpchandler.NewOutletGrpcHandler(outletSvc),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("gRPC server listening on %s", cfg.Server.ListenAddr)
		return grpcServer.Run(gctx)
	})

	if cfg.HTTP.ListenAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		router := httphandler.NewRouter(httphandler.RouterConfig{
			AllowOrigins: cfg.HTTP.AllowOrigins,
			MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
			Location:     cfg.Attendance.Location,
		}, orchestrator, attendanceSvc)
		httpServer := server.NewHTTP(cfg.HTTP.ListenAddr, router, cfg.HTTP.ShutdownTimeout)

		g.Go(func() error {
			log.Printf("HTTP server listening on %s", cfg.HTTP.ListenAddr)
			return httpServer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Printf("server stopped")
}

func warmUp(ctx context.Context, w face.Warmer, timeout time.Duration) {
	warmCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	if err := w.Warmup(warmCtx); err != nil {
		log.Printf("extractor warmup failed, first scan may be slow: %v", err)
		return
	}
	log.Printf("extractor warmed up in %s", time.Since(started).Round(time.Millisecond))
}
