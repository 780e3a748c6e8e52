package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The daemon service carries its payloads as google.protobuf.Struct so the
// wire contract needs no generated code:
//
//	service WarehouseDaemon {
//	  rpc Apply(Struct) returns (Struct);   // {"line": "Picker a ready"}
//	  rpc Status(Empty) returns (Struct);
//	  rpc Stock(Empty) returns (Struct);
//	  rpc Logs(Struct) returns (Struct);    // {"limit": 50, "level": "WARNING"}
//	}
const serviceName = "warehouse.daemon.v1.WarehouseDaemon"

const (
	methodApply  = "/" + serviceName + "/Apply"
	methodStatus = "/" + serviceName + "/Status"
	methodStock  = "/" + serviceName + "/Stock"
	methodLogs   = "/" + serviceName + "/Logs"
)

// WarehouseDaemonServer is the server API of the daemon service
type WarehouseDaemonServer interface {
	Apply(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Status(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	Stock(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	Logs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// RegisterWarehouseDaemonServer registers srv on s
func RegisterWarehouseDaemonServer(s grpc.ServiceRegistrar, srv WarehouseDaemonServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*WarehouseDaemonServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Apply", Handler: structHandler(methodApply, func(srv WarehouseDaemonServer) func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return srv.Apply
		})},
		{MethodName: "Status", Handler: emptyHandler(methodStatus, func(srv WarehouseDaemonServer) func(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
			return srv.Status
		})},
		{MethodName: "Stock", Handler: emptyHandler(methodStock, func(srv WarehouseDaemonServer) func(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
			return srv.Stock
		})},
		{MethodName: "Logs", Handler: structHandler(methodLogs, func(srv WarehouseDaemonServer) func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return srv.Logs
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "warehouse/daemon/v1/daemon.proto",
}

type methodHandler = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)

func structHandler(fullMethod string, pick func(WarehouseDaemonServer) func(context.Context, *structpb.Struct) (*structpb.Struct, error)) methodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		call := pick(srv.(WarehouseDaemonServer))
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*structpb.Struct))
		})
	}
}

func emptyHandler(fullMethod string, pick func(WarehouseDaemonServer) func(context.Context, *emptypb.Empty) (*structpb.Struct, error)) methodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		call := pick(srv.(WarehouseDaemonServer))
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*emptypb.Empty))
		})
	}
}
