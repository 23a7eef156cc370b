package task

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bingshan1999/TaskManager/internal/dto"
)

// GrpcClient calls a remote task service.
type GrpcClient struct {
	conn *grpc.ClientConn
}

func NewGrpcClient(target string, opts ...grpc.DialOption) (*GrpcClient, error) {
	if target == "" {
		return nil, fmt.Errorf("task grpc target is required")
	}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial task service: %w", err)
	}

	return &GrpcClient{conn: conn}, nil
}

func (c *GrpcClient) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GrpcClient) TaskList(ctx context.Context) (*dto.TaskListResponse, error) {
	out := new(dto.TaskListResponse)
	if err := c.conn.Invoke(ctx, fullMethod("TaskList"), &dto.TaskListRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GrpcClient) GetTask(ctx context.Context, id int64) (*dto.TaskResponse, error) {
	out := new(dto.TaskResponse)
	if err := c.conn.Invoke(ctx, fullMethod("GetTask"), &dto.TaskIDRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GrpcClient) CreateTask(ctx context.Context, req dto.TaskRequest) (*dto.TaskResponse, error) {
	out := new(dto.TaskResponse)
	if err := c.conn.Invoke(ctx, fullMethod("CreateTask"), &req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GrpcClient) UpdateTask(ctx context.Context, id int64, req dto.TaskRequest) (*dto.TaskResponse, error) {
	out := new(dto.TaskResponse)
	in := &dto.UpdateTaskRequest{ID: id, Task: req}
	if err := c.conn.Invoke(ctx, fullMethod("UpdateTask"), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GrpcClient) DeleteTask(ctx context.Context, id int64) error {
	return c.conn.Invoke(ctx, fullMethod("DeleteTask"), &dto.TaskIDRequest{ID: id}, &dto.DeleteTaskResponse{})
}
