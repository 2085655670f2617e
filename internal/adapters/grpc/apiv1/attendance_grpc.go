package apiv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	AttendanceService_Scan_FullMethodName                 = "/" + packageName + ".AttendanceService/Scan"
	AttendanceService_ListAttendances_FullMethodName      = "/" + packageName + ".AttendanceService/ListAttendances"
	AttendanceService_GetAttendanceSummary_FullMethodName = "/" + packageName + ".AttendanceService/GetAttendanceSummary"
)

// AttendanceServiceServer は facegate.v1.AttendanceService のサーバー実装です。
type AttendanceServiceServer interface {
	Scan(context.Context, *ScanRequest) (*ScanResponse, error)
	ListAttendances(context.Context, *ListAttendancesRequest) (*ListAttendancesResponse, error)
	GetAttendanceSummary(context.Context, *GetAttendanceSummaryRequest) (*GetAttendanceSummaryResponse, error)
}

// UnimplementedAttendanceServiceServer は未実装メソッドに Unimplemented を返します。
type UnimplementedAttendanceServiceServer struct{}

func (UnimplementedAttendanceServiceServer) Scan(context.Context, *ScanRequest) (*ScanResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Scan not implemented")
}

func (UnimplementedAttendanceServiceServer) ListAttendances(context.Context, *ListAttendancesRequest) (*ListAttendancesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAttendances not implemented")
}

func (UnimplementedAttendanceServiceServer) GetAttendanceSummary(context.Context, *GetAttendanceSummaryRequest) (*GetAttendanceSummaryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAttendanceSummary not implemented")
}

// AttendanceService_ServiceDesc は facegate.v1.AttendanceService のサービス記述です。
var AttendanceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + ".AttendanceService",
	HandlerType: (*AttendanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Scan", Handler: unary(AttendanceService_Scan_FullMethodName, AttendanceServiceServer.Scan)},
		{MethodName: "ListAttendances", Handler: unary(AttendanceService_ListAttendances_FullMethodName, AttendanceServiceServer.ListAttendances)},
		{MethodName: "GetAttendanceSummary", Handler: unary(AttendanceService_GetAttendanceSummary_FullMethodName, AttendanceServiceServer.GetAttendanceSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "facegate/v1/attendance",
}

// RegisterAttendanceServiceServer はサーバーにサービスを登録します。
func RegisterAttendanceServiceServer(s grpc.ServiceRegistrar, srv AttendanceServiceServer) {
	s.RegisterService(&AttendanceService_ServiceDesc, srv)
}

// AttendanceServiceClient は facegate.v1.AttendanceService のクライアントです。
type AttendanceServiceClient interface {
	Scan(ctx context.Context, in *ScanRequest, opts ...grpc.CallOption) (*ScanResponse, error)
	ListAttendances(ctx context.Context, in *ListAttendancesRequest, opts ...grpc.CallOption) (*ListAttendancesResponse, error)
	GetAttendanceSummary(ctx context.Context, in *GetAttendanceSummaryRequest, opts ...grpc.CallOption) (*GetAttendanceSummaryResponse, error)
}

type attendanceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAttendanceServiceClient は JSON コーデックを用いるクライアントを生成します。
func NewAttendanceServiceClient(cc grpc.ClientConnInterface) AttendanceServiceClient {
	return &attendanceServiceClient{cc: cc}
}

func (c *attendanceServiceClient) Scan(ctx context.Context, in *ScanRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, AttendanceService_Scan_FullMethodName, in, opts)
}

func (c *attendanceServiceClient) ListAttendances(ctx context.Context, in *ListAttendancesRequest, opts ...grpc.CallOption) (*ListAttendancesResponse, error) {
	return invoke[ListAttendancesResponse](ctx, c.cc, AttendanceService_ListAttendances_FullMethodName, in, opts)
}

func (c *attendanceServiceClient) GetAttendanceSummary(ctx context.Context, in *GetAttendanceSummaryRequest, opts ...grpc.CallOption) (*GetAttendanceSummaryResponse, error) {
	return invoke[GetAttendanceSummaryResponse](ctx, c.cc, AttendanceService_GetAttendanceSummary_FullMethodName, in, opts)
}
