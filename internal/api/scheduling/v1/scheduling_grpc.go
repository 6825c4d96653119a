// Package schedulingv1 describes the scheduling.v1.SchedulingService gRPC
// surface. Requests and responses are google.protobuf.Struct values shaped
// like the JSON documents of the scheduling package.
package schedulingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "scheduling.v1.SchedulingService"

const (
	SchedulingService_ValidateSchedule_FullMethodName        = "/" + ServiceName + "/ValidateSchedule"
	SchedulingService_CreateSchedule_FullMethodName          = "/" + ServiceName + "/CreateSchedule"
	SchedulingService_UpdateSchedule_FullMethodName          = "/" + ServiceName + "/UpdateSchedule"
	SchedulingService_CancelSchedule_FullMethodName          = "/" + ServiceName + "/CancelSchedule"
	SchedulingService_GetSchedule_FullMethodName             = "/" + ServiceName + "/GetSchedule"
	SchedulingService_BulkCreateSchedules_FullMethodName     = "/" + ServiceName + "/BulkCreateSchedules"
	SchedulingService_CheckRoomConflict_FullMethodName       = "/" + ServiceName + "/CheckRoomConflict"
	SchedulingService_CheckInstructorConflict_FullMethodName = "/" + ServiceName + "/CheckInstructorConflict"
)

// Metadata key carrying the acting user id.
const UserIDMetadataKey = "x-user-id"

// SchedulingServiceClient is the client API for SchedulingService.
type SchedulingServiceClient interface {
	ValidateSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CancelSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	BulkCreateSchedules(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CheckRoomConflict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CheckInstructorConflict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type schedulingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSchedulingServiceClient(cc grpc.ClientConnInterface) SchedulingServiceClient {
	return &schedulingServiceClient{cc}
}

func (c *schedulingServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *schedulingServiceClient) ValidateSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_ValidateSchedule_FullMethodName, in, opts)
}

func (c *schedulingServiceClient) CreateSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_CreateSchedule_FullMethodName, in, opts)
}

func (c *schedulingServiceClient) UpdateSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_UpdateSchedule_FullMethodName, in, opts)
}

func (c *schedulingServiceClient) CancelSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_CancelSchedule_FullMethodName, in, opts)
}

func (c *schedulingServiceClient) GetSchedule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_GetSchedule_FullMethodName, in, opts)
}

func (c *schedulingServiceClient) BulkCreateSchedules(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_BulkCreateSchedules_FullMethodName, in, opts)
}

func (c *schedulingServiceClient) CheckRoomConflict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_CheckRoomConflict_FullMethodName, in, opts)
}

func (c *schedulingServiceClient) CheckInstructorConflict(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SchedulingService_CheckInstructorConflict_FullMethodName, in, opts)
}

// SchedulingServiceServer is the server API for SchedulingService.
// Implementations must embed UnimplementedSchedulingServiceServer.
type SchedulingServiceServer interface {
	ValidateSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BulkCreateSchedules(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckRoomConflict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckInstructorConflict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedSchedulingServiceServer()
}

type UnimplementedSchedulingServiceServer struct{}

func (UnimplementedSchedulingServiceServer) ValidateSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateSchedule not implemented")
}
func (UnimplementedSchedulingServiceServer) CreateSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSchedule not implemented")
}
func (UnimplementedSchedulingServiceServer) UpdateSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateSchedule not implemented")
}
func (UnimplementedSchedulingServiceServer) CancelSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelSchedule not implemented")
}
func (UnimplementedSchedulingServiceServer) GetSchedule(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSchedule not implemented")
}
func (UnimplementedSchedulingServiceServer) BulkCreateSchedules(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method BulkCreateSchedules not implemented")
}
func (UnimplementedSchedulingServiceServer) CheckRoomConflict(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckRoomConflict not implemented")
}
func (UnimplementedSchedulingServiceServer) CheckInstructorConflict(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckInstructorConflict not implemented")
}
func (UnimplementedSchedulingServiceServer) mustEmbedUnimplementedSchedulingServiceServer() {}

func RegisterSchedulingServiceServer(s grpc.ServiceRegistrar, srv SchedulingServiceServer) {
	s.RegisterService(&SchedulingService_ServiceDesc, srv)
}

type unaryMethod func(SchedulingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SchedulingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		next := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SchedulingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, next)
	}
}

var SchedulingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateSchedule", Handler: handler(SchedulingService_ValidateSchedule_FullMethodName, SchedulingServiceServer.ValidateSchedule)},
		{MethodName: "CreateSchedule", Handler: handler(SchedulingService_CreateSchedule_FullMethodName, SchedulingServiceServer.CreateSchedule)},
		{MethodName: "UpdateSchedule", Handler: handler(SchedulingService_UpdateSchedule_FullMethodName, SchedulingServiceServer.UpdateSchedule)},
		{MethodName: "CancelSchedule", Handler: handler(SchedulingService_CancelSchedule_FullMethodName, SchedulingServiceServer.CancelSchedule)},
		{MethodName: "GetSchedule", Handler: handler(SchedulingService_GetSchedule_FullMethodName, SchedulingServiceServer.GetSchedule)},
		{MethodName: "BulkCreateSchedules", Handler: handler(SchedulingService_BulkCreateSchedules_FullMethodName, SchedulingServiceServer.BulkCreateSchedules)},
		{MethodName: "CheckRoomConflict", Handler: handler(SchedulingService_CheckRoomConflict_FullMethodName, SchedulingServiceServer.CheckRoomConflict)},
		{MethodName: "CheckInstructorConflict", Handler: handler(SchedulingService_CheckInstructorConflict_FullMethodName, SchedulingServiceServer.CheckInstructorConflict)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scheduling/v1/scheduling.proto",
}
