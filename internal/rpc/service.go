package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// predictService is the handler contract registered under ServiceName.
type predictService interface {
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPredictions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*predictService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: unaryHandler(predictMethod, predictService.Predict)},
		{MethodName: "ListPredictions", Handler: unaryHandler(listMethod, predictService.ListPredictions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hyperleaf/v1/predict.proto",
}

func unaryHandler(fullMethod string, call func(predictService, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(predictService)
		if interceptor == nil {
			return call(svc, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(svc, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// #endregion service-desc
