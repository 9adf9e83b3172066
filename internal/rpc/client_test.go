package rpc

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperleaf/hyperleaf-go/internal/model/modeltest"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region mock
type mockConn struct {
	grpc.ClientConnInterface

	method string
	req    *structpb.Struct
	resp   *structpb.Struct
	err    error
}

func (m *mockConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	m.method = method
	m.req = args.(*structpb.Struct)
	if m.err != nil {
		return m.err
	}
	proto.Merge(reply.(*structpb.Struct), m.resp)
	return nil
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

// #endregion mock

// #region constructor-tests
func TestNewClientLazyConnect(t *testing.T) {
	c, err := NewClient("localhost:0")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewClientWithConnCloseIsNoop(t *testing.T) {
	c := NewClientWithConn(&mockConn{})
	if err := c.Close(); err != nil {
		t.Fatalf("expected nil close error, got %v", err)
	}
}

// #endregion constructor-tests

// #region predict-tests
func TestClientPredict_Success(t *testing.T) {
	mock := &mockConn{resp: mustStruct(t, map[string]any{
		"cultivar_prediction": "Rembrandt",
		"confidence":          0.8,
		"cultivar_probs":      []any{0.1, 0.05, 0.8, 0.05},
		"urea_required_kg":    22.0,
		"id":                  "abc",
	})}
	c := NewClientWithConn(mock)

	got, err := c.Predict(context.Background(), modeltest.Cube(1, 6, 8, 8, 1), predict.Field{AreaAcres: 2, FertilizerRateInr: 5}, "dana", "x.tiff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.method != predictMethod {
		t.Errorf("expected method %s, got %s", predictMethod, mock.method)
	}
	if got.Cultivar != "Rembrandt" || got.Confidence != 0.8 || got.ID != "abc" {
		t.Errorf("unexpected prediction %+v", got)
	}
	if len(got.CultivarProbs) != 4 {
		t.Errorf("expected 4 probabilities, got %d", len(got.CultivarProbs))
	}

	var sent PredictRequest
	if err := fromStruct(mock.req, &sent); err != nil {
		t.Fatalf("decode sent request: %v", err)
	}
	if sent.FieldAreaAcres != 2 || sent.Owner != "dana" || len(sent.Cube) == 0 {
		t.Errorf("unexpected request %+v", sent)
	}
}

func TestClientPredict_Error(t *testing.T) {
	mock := &mockConn{err: errors.New("rpc failed")}
	c := NewClientWithConn(mock)

	_, err := c.Predict(context.Background(), modeltest.Cube(1, 6, 8, 8, 1), predict.Field{}, "", "")
	if !errors.Is(err, mock.err) {
		t.Fatalf("expected wrapped rpc error, got: %v", err)
	}
}

func TestClientList(t *testing.T) {
	mock := &mockConn{resp: mustStruct(t, map[string]any{
		"predictions": []any{
			map[string]any{"id": "2", "cultivar_prediction": "Kvium"},
			map[string]any{"id": "1", "cultivar_prediction": "Sheriff"},
		},
	})}
	c := NewClientWithConn(mock)

	got, err := c.ListPredictions(context.Background(), "erin", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.method != listMethod {
		t.Errorf("expected method %s, got %s", listMethod, mock.method)
	}
	if len(got) != 2 || got[0].ID != "2" {
		t.Fatalf("unexpected predictions %+v", got)
	}
	var sent ListRequest
	if err := fromStruct(mock.req, &sent); err != nil {
		t.Fatalf("decode sent request: %v", err)
	}
	if sent.Owner != "erin" || sent.Limit != 5 {
		t.Errorf("unexpected request %+v", sent)
	}
}

// #endregion predict-tests
