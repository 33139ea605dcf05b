package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
)

// #region client-struct
// Client wraps the gRPC connection to an AuditService.
type Client struct {
	conn   *grpc.ClientConn
	client AuditServiceClient
}
// #endregion client-struct

// #region constructor
// NewClient connects to an AuditService at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewAuditServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service
// implementation. Used for testing without a real gRPC connection.
func NewClientWithService(svc AuditServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region run-audit
// RunAudit asks the service to run an audit and returns its report.
func (c *Client) RunAudit(ctx context.Context, req RunRequest) (audit.Report, error) {
	in, err := req.toStruct()
	if err != nil {
		return audit.Report{}, fmt.Errorf("run audit request: %w", err)
	}
	resp, err := c.client.RunAudit(ctx, in)
	if err != nil {
		return audit.Report{}, fmt.Errorf("run audit rpc: %w", err)
	}
	return StructToReport(resp)
}
// #endregion run-audit

// #region get-run
// GetRun fetches a stored report by id.
func (c *Client) GetRun(ctx context.Context, runID string) (audit.Report, error) {
	resp, err := c.client.GetRun(ctx, &structpb.Struct{
		Fields: map[string]*structpb.Value{"run_id": structpb.NewStringValue(runID)},
	})
	if err != nil {
		return audit.Report{}, fmt.Errorf("get run rpc: %w", err)
	}
	return StructToReport(resp)
}
// #endregion get-run
