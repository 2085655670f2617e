package apiv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	OutletService_CreateOutlet_FullMethodName = "/" + packageName + ".OutletService/CreateOutlet"
	OutletService_UpdateOutlet_FullMethodName = "/" + packageName + ".OutletService/UpdateOutlet"
	OutletService_DeleteOutlet_FullMethodName = "/" + packageName + ".OutletService/DeleteOutlet"
	OutletService_GetOutlet_FullMethodName    = "/" + packageName + ".OutletService/GetOutlet"
	OutletService_ListOutlets_FullMethodName  = "/" + packageName + ".OutletService/ListOutlets"
)

// OutletServiceServer は facegate.v1.OutletService のサーバー実装です。
type OutletServiceServer interface {
	CreateOutlet(context.Context, *CreateOutletRequest) (*CreateOutletResponse, error)
	UpdateOutlet(context.Context, *UpdateOutletRequest) (*UpdateOutletResponse, error)
	DeleteOutlet(context.Context, *DeleteOutletRequest) (*DeleteOutletResponse, error)
	GetOutlet(context.Context, *GetOutletRequest) (*GetOutletResponse, error)
	ListOutlets(context.Context, *ListOutletsRequest) (*ListOutletsResponse, error)
}

// UnimplementedOutletServiceServer は未実装メソッドに Unimplemented を返します。
type UnimplementedOutletServiceServer struct{}

func (UnimplementedOutletServiceServer) CreateOutlet(context.Context, *CreateOutletRequest) (*CreateOutletResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOutlet not implemented")
}

func (UnimplementedOutletServiceServer) UpdateOutlet(context.Context, *UpdateOutletRequest) (*UpdateOutletResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateOutlet not implemented")
}

func (UnimplementedOutletServiceServer) DeleteOutlet(context.Context, *DeleteOutletRequest) (*DeleteOutletResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteOutlet not implemented")
}

func (UnimplementedOutletServiceServer) GetOutlet(context.Context, *GetOutletRequest) (*GetOutletResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOutlet not implemented")
}

func (UnimplementedOutletServiceServer) ListOutlets(context.Context, *ListOutletsRequest) (*ListOutletsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOutlets not implemented")
}

// OutletService_ServiceDesc は facegate.v1.OutletService のサービス記述です。
var OutletService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + ".OutletService",
	HandlerType: (*OutletServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOutlet", Handler: unary(OutletService_CreateOutlet_FullMethodName, OutletServiceServer.CreateOutlet)},
		{MethodName: "UpdateOutlet", Handler: unary(OutletService_UpdateOutlet_FullMethodName, OutletServiceServer.UpdateOutlet)},
		{MethodName: "DeleteOutlet", Handler: unary(OutletService_DeleteOutlet_FullMethodName, OutletServiceServer.DeleteOutlet)},
		{MethodName: "GetOutlet", Handler: unary(OutletService_GetOutlet_FullMethodName, OutletServiceServer.GetOutlet)},
		{MethodName: "ListOutlets", Handler: unary(OutletService_ListOutlets_FullMethodName, OutletServiceServer.ListOutlets)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "facegate/v1/outlet",
}

// RegisterOutletServiceServer はサーバーにサービスを登録します。
func RegisterOutletServiceServer(s grpc.ServiceRegistrar, srv OutletServiceServer) {
	s.RegisterService(&OutletService_ServiceDesc, srv)
}

// OutletServiceClient は facegate.v1.OutletService のクライアントです。
type OutletServiceClient interface {
	CreateOutlet(ctx context.Context, in *CreateOutletRequest, opts ...grpc.CallOption) (*CreateOutletResponse, error)
	UpdateOutlet(ctx context.Context, in *UpdateOutletRequest, opts ...grpc.CallOption) (*UpdateOutletResponse, error)
	DeleteOutlet(ctx context.Context, in *DeleteOutletRequest, opts ...grpc.CallOption) (*DeleteOutletResponse, error)
	GetOutlet(ctx context.Context, in *GetOutletRequest, opts ...grpc.CallOption) (*GetOutletResponse, error)
	ListOutlets(ctx context.Context, in *ListOutletsRequest, opts ...grpc.CallOption) (*ListOutletsResponse, error)
}

type outletServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOutletServiceClient は JSON コーデックを用いるクライアントを生成します。
func NewOutletServiceClient(cc grpc.ClientConnInterface) OutletServiceClient {
	return &outletServiceClient{cc: cc}
}

func (c *outletServiceClient) CreateOutlet(ctx context.Context, in *CreateOutletRequest, opts ...grpc.CallOption) (*CreateOutletResponse, error) {
	return invoke[CreateOutletResponse](ctx, c.cc, OutletService_CreateOutlet_FullMethodName, in, opts)
}

func (c *outletServiceClient) UpdateOutlet(ctx context.Context, in *UpdateOutletRequest, opts ...grpc.CallOption) (*UpdateOutletResponse, error) {
	return invoke[UpdateOutletResponse](ctx, c.cc, OutletService_UpdateOutlet_FullMethodName, in, opts)
}

func (c *outletServiceClient) DeleteOutlet(ctx context.Context, in *DeleteOutletRequest, opts ...grpc.CallOption) (*DeleteOutletResponse, error) {
	return invoke[DeleteOutletResponse](ctx, c.cc, OutletService_DeleteOutlet_FullMethodName, in, opts)
}

func (c *outletServiceClient) GetOutlet(ctx context.Context, in *GetOutletRequest, opts ...grpc.CallOption) (*GetOutletResponse, error) {
	return invoke[GetOutletResponse](ctx, c.cc, OutletService_GetOutlet_FullMethodName, in, opts)
}

func (c *outletServiceClient) ListOutlets(ctx context.Context, in *ListOutletsRequest, opts ...grpc.CallOption) (*ListOutletsResponse, error) {
	return invoke[ListOutletsResponse](ctx, c.cc, OutletService_ListOutlets_FullMethodName, in, opts)
}
