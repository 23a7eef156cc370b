package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bingshan1999/TaskManager/internal/dto"
)

const grpcServiceName = "taskmanager.v1.TaskService"

// jsonCodec carries the dto structs as JSON instead of protobuf.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

// TaskServer is the gRPC contract of the task service.
type TaskServer interface {
	TaskList(ctx context.Context, req *dto.TaskListRequest) (*dto.TaskListResponse, error)
	GetTask(ctx context.Context, req *dto.TaskIDRequest) (*dto.TaskResponse, error)
	CreateTask(ctx context.Context, req *dto.TaskRequest) (*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, req *dto.TaskIDRequest) (*dto.DeleteTaskResponse, error)
}

var taskServiceDesc = grpc.ServiceDesc{
	ServiceName: grpcServiceName,
	HandlerType: (*TaskServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "TaskList",
			Handler: unaryHandler("TaskList", func(s TaskServer, ctx context.Context, in *dto.TaskListRequest) (any, error) {
				return s.TaskList(ctx, in)
			}),
		},
		{
			MethodName: "GetTask",
			Handler: unaryHandler("GetTask", func(s TaskServer, ctx context.Context, in *dto.TaskIDRequest) (any, error) {
				return s.GetTask(ctx, in)
			}),
		},
		{
			MethodName: "CreateTask",
			Handler: unaryHandler("CreateTask", func(s TaskServer, ctx context.Context, in *dto.TaskRequest) (any, error) {
				return s.CreateTask(ctx, in)
			}),
		},
		{
			MethodName: "UpdateTask",
			Handler: unaryHandler("UpdateTask", func(s TaskServer, ctx context.Context, in *dto.UpdateTaskRequest) (any, error) {
				return s.UpdateTask(ctx, in)
			}),
		},
		{
			MethodName: "DeleteTask",
			Handler: unaryHandler("DeleteTask", func(s TaskServer, ctx context.Context, in *dto.TaskIDRequest) (any, error) {
				return s.DeleteTask(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskmanager/v1/task.proto",
}

func fullMethod(method string) string {
	return "/" + grpcServiceName + "/" + method
}

func unaryHandler[Req any](
	method string,
	call func(TaskServer, context.Context, *Req) (any, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TaskServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// NewGrpcServer returns a server with the task service registered.
func NewGrpcServer(handler TaskServer, log zerolog.Logger) *grpc.Server {
	server := grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.UnaryInterceptor(loggingInterceptor(log)),
	)
	server.RegisterService(&taskServiceDesc, handler)
	return server
}

func loggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		event := log.Info()
		if err != nil {
			event = log.Warn().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("grpc request")
		return resp, err
	}
}

// GrpcHandler serves TaskServer on top of a TaskService.
type GrpcHandler struct {
	service TaskService
}

func NewGrpcHandler(service TaskService) *GrpcHandler {
	return &GrpcHandler{
		service: service,
	}
}

func (h *GrpcHandler) TaskList(ctx context.Context, _ *dto.TaskListRequest) (*dto.TaskListResponse, error) {
	tasks, err := h.service.TaskList(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &dto.TaskListResponse{Tasks: toResponseList(tasks)}, nil
}

func (h *GrpcHandler) GetTask(ctx context.Context, req *dto.TaskIDRequest) (*dto.TaskResponse, error) {
	task, err := h.service.GetTask(ctx, req.ID)
	if err != nil {
		return nil, toStatusError(err)
	}
	resp := toResponse(task)
	return &resp, nil
}

func (h *GrpcHandler) CreateTask(ctx context.Context, req *dto.TaskRequest) (*dto.TaskResponse, error) {
	fields, err := fieldsFromRequest(*req)
	if err != nil {
		return nil, toStatusError(err)
	}

	task, err := h.service.CreateTask(ctx, fields)
	if err != nil {
		return nil, toStatusError(err)
	}
	resp := toResponse(task)
	return &resp, nil
}

func (h *GrpcHandler) UpdateTask(ctx context.Context, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	fields, err := fieldsFromRequest(req.Task)
	if err != nil {
		return nil, toStatusError(err)
	}

	task, err := h.service.UpdateTask(ctx, req.ID, fields)
	if err != nil {
		return nil, toStatusError(err)
	}
	resp := toResponse(task)
	return &resp, nil
}

func (h *GrpcHandler) DeleteTask(ctx context.Context, req *dto.TaskIDRequest) (*dto.DeleteTaskResponse, error) {
	if err := h.service.DeleteTask(ctx, req.ID); err != nil {
		return nil, toStatusError(err)
	}
	return &dto.DeleteTaskResponse{}, nil
}

func toStatusError(err error) error {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidStatus):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
