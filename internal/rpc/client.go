package rpc

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region client-struct
// Client calls a remote PredictService.
type Client struct {
	conn   *grpc.ClientConn
	cc     grpc.ClientConnInterface
	maxMsg int
}

// #endregion client-struct

// #region constructor
// NewClient connects to a PredictService at addr without transport security.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn, maxMsg: DefaultMaxMessageBytes}, nil
}

// NewClientWithConn wraps an existing connection. The caller owns cc.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc, maxMsg: DefaultMaxMessageBytes}
}

// #endregion constructor

// #region close
// Close shuts down a connection opened by NewClient.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region predict
// Predict sends cube and field context and returns the server's prediction.
func (c *Client) Predict(ctx context.Context, cube *tensor.Cube, field predict.Field, owner, imageName string) (Prediction, error) {
	var buf bytes.Buffer
	if err := tensor.WriteRaw(&buf, cube); err != nil {
		return Prediction{}, fmt.Errorf("encode cube: %w", err)
	}
	in, err := toStruct(PredictRequest{
		Cube:              buf.Bytes(),
		FieldAreaAcres:    field.AreaAcres,
		FertilizerRateInr: field.FertilizerRateInr,
		Owner:             owner,
		ImageName:         imageName,
	})
	if err != nil {
		return Prediction{}, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, predictMethod, in, out, c.callOptions()...); err != nil {
		return Prediction{}, fmt.Errorf("predict rpc: %w", err)
	}
	var p Prediction
	if err := fromStruct(out, &p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

// #endregion predict

// #region list
// ListPredictions fetches saved predictions. An empty owner lists all owners.
func (c *Client) ListPredictions(ctx context.Context, owner string, limit int) ([]Prediction, error) {
	in, err := toStruct(ListRequest{Owner: owner, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listMethod, in, out, c.callOptions()...); err != nil {
		return nil, fmt.Errorf("list rpc: %w", err)
	}
	var resp ListResponse
	if err := fromStruct(out, &resp); err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}

// #endregion list

func (c *Client) callOptions() []grpc.CallOption {
	return []grpc.CallOption{
		grpc.MaxCallSendMsgSize(c.maxMsg),
		grpc.MaxCallRecvMsgSize(c.maxMsg),
	}
}
