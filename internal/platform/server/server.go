package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/apiv1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Services は gRPC サーバーに登録するサービス実装です。nil のサービスは登録しません。
type Services struct {
	Attendance apiv1.AttendanceServiceServer
	Employee   apiv1.EmployeeServiceServer
	Outlet     apiv1.OutletServiceServer
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築し、サービスとヘルスチェックを登録します。
func New(listenAddr string, services Services, opts ...grpc.ServerOption) *Server {
	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	if services.Attendance != nil {
		apiv1.RegisterAttendanceServiceServer(srv, services.Attendance)
		hs.SetServingStatus(apiv1.AttendanceService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	if services.Employee != nil {
		apiv1.RegisterEmployeeServiceServer(srv, services.Employee)
		hs.SetServingStatus(apiv1.EmployeeService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	if services.Outlet != nil {
		apiv1.RegisterOutletServiceServer(srv, services.Outlet)
		hs.SetServingStatus(apiv1.OutletService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     hs,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は既存のリスナーで待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はヘルスチェックを NOT_SERVING にしてからサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
