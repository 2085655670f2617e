package apiv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	EmployeeService_CreateEmployee_FullMethodName = "/" + packageName + ".EmployeeService/CreateEmployee"
	EmployeeService_UpdateEmployee_FullMethodName = "/" + packageName + ".EmployeeService/UpdateEmployee"
	EmployeeService_DeleteEmployee_FullMethodName = "/" + packageName + ".EmployeeService/DeleteEmployee"
	EmployeeService_GetEmployee_FullMethodName    = "/" + packageName + ".EmployeeService/GetEmployee"
	EmployeeService_ListEmployees_FullMethodName  = "/" + packageName + ".EmployeeService/ListEmployees"
)

// EmployeeServiceServer は facegate.v1.EmployeeService のサーバー実装です。
type EmployeeServiceServer interface {
	CreateEmployee(context.Context, *CreateEmployeeRequest) (*CreateEmployeeResponse, error)
	UpdateEmployee(context.Context, *UpdateEmployeeRequest) (*UpdateEmployeeResponse, error)
	DeleteEmployee(context.Context, *DeleteEmployeeRequest) (*DeleteEmployeeResponse, error)
	GetEmployee(context.Context, *GetEmployeeRequest) (*GetEmployeeResponse, error)
	ListEmployees(context.Context, *ListEmployeesRequest) (*ListEmployeesResponse, error)
}

// UnimplementedEmployeeServiceServer は未実装メソッドに Unimplemented を返します。
type UnimplementedEmployeeServiceServer struct{}

func (UnimplementedEmployeeServiceServer) CreateEmployee(context.Context, *CreateEmployeeRequest) (*CreateEmployeeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateEmployee not implemented")
}

func (UnimplementedEmployeeServiceServer) UpdateEmployee(context.Context, *UpdateEmployeeRequest) (*UpdateEmployeeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateEmployee not implemented")
}

func (UnimplementedEmployeeServiceServer) DeleteEmployee(context.Context, *DeleteEmployeeRequest) (*DeleteEmployeeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteEmployee not implemented")
}

func (UnimplementedEmployeeServiceServer) GetEmployee(context.Context, *GetEmployeeRequest) (*GetEmployeeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEmployee not implemented")
}

func (UnimplementedEmployeeServiceServer) ListEmployees(context.Context, *ListEmployeesRequest) (*ListEmployeesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEmployees not implemented")
}

// EmployeeService_ServiceDesc は facegate.v1.EmployeeService のサービス記述です。
var EmployeeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: packageName + ".EmployeeService",
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateEmployee", Handler: unary(EmployeeService_CreateEmployee_FullMethodName, EmployeeServiceServer.CreateEmployee)},
		{MethodName: "UpdateEmployee", Handler: unary(EmployeeService_UpdateEmployee_FullMethodName, EmployeeServiceServer.UpdateEmployee)},
		{MethodName: "DeleteEmployee", Handler: unary(EmployeeService_DeleteEmployee_FullMethodName, EmployeeServiceServer.DeleteEmployee)},
		{MethodName: "GetEmployee", Handler: unary(EmployeeService_GetEmployee_FullMethodName, EmployeeServiceServer.GetEmployee)},
		{MethodName: "ListEmployees", Handler: unary(EmployeeService_ListEmployees_FullMethodName, EmployeeServiceServer.ListEmployees)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "facegate/v1/employee",
}

// RegisterEmployeeServiceServer はサーバーにサービスを登録します。
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeService_ServiceDesc, srv)
}

// EmployeeServiceClient は facegate.v1.EmployeeService のクライアントです。
type EmployeeServiceClient interface {
	CreateEmployee(ctx context.Context, in *CreateEmployeeRequest, opts ...grpc.CallOption) (*CreateEmployeeResponse, error)
	UpdateEmployee(ctx context.Context, in *UpdateEmployeeRequest, opts ...grpc.CallOption) (*UpdateEmployeeResponse, error)
	DeleteEmployee(ctx context.Context, in *DeleteEmployeeRequest, opts ...grpc.CallOption) (*DeleteEmployeeResponse, error)
	GetEmployee(ctx context.Context, in *GetEmployeeRequest, opts ...grpc.CallOption) (*GetEmployeeResponse, error)
	ListEmployees(ctx context.Context, in *ListEmployeesRequest, opts ...grpc.CallOption) (*ListEmployeesResponse, error)
}

type employeeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewEmployeeServiceClient は JSON コーデックを用いるクライアントを生成します。
func NewEmployeeServiceClient(cc grpc.ClientConnInterface) EmployeeServiceClient {
	return &employeeServiceClient{cc: cc}
}

func (c *employeeServiceClient) CreateEmployee(ctx context.Context, in *CreateEmployeeRequest, opts ...grpc.CallOption) (*CreateEmployeeResponse, error) {
	return invoke[CreateEmployeeResponse](ctx, c.cc, EmployeeService_CreateEmployee_FullMethodName, in, opts)
}

func (c *employeeServiceClient) UpdateEmployee(ctx context.Context, in *UpdateEmployeeRequest, opts ...grpc.CallOption) (*UpdateEmployeeResponse, error) {
	return invoke[UpdateEmployeeResponse](ctx, c.cc, EmployeeService_UpdateEmployee_FullMethodName, in, opts)
}

func (c *employeeServiceClient) DeleteEmployee(ctx context.Context, in *DeleteEmployeeRequest, opts ...grpc.CallOption) (*DeleteEmployeeResponse, error) {
	return invoke[DeleteEmployeeResponse](ctx, c.cc, EmployeeService_DeleteEmployee_FullMethodName, in, opts)
}

func (c *employeeServiceClient) GetEmployee(ctx context.Context, in *GetEmployeeRequest, opts ...grpc.CallOption) (*GetEmployeeResponse, error) {
	return invoke[GetEmployeeResponse](ctx, c.cc, EmployeeService_GetEmployee_FullMethodName, in, opts)
}

func (c *employeeServiceClient) ListEmployees(ctx context.Context, in *ListEmployeesRequest, opts ...grpc.CallOption) (*ListEmployeesResponse, error) {
	return invoke[ListEmployeesResponse](ctx, c.cc, EmployeeService_ListEmployees_FullMethodName, in, opts)
}
