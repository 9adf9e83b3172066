package rpc

// #region service
// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hyperleaf.v1.PredictService"

const (
	predictMethod = "/" + ServiceName + "/Predict"
	listMethod    = "/" + ServiceName + "/ListPredictions"
)

// DefaultMaxMessageBytes fits a full-resolution cube with room to spare.
const DefaultMaxMessageBytes = 256 << 20

// #endregion service

// #region messages
// Messages travel as google.protobuf.Struct. These types define the field
// names; JSON tags are the wire keys.

// PredictRequest asks for one prediction. Cube is a raw HLCB cube file,
// base64 encoded on the wire.
type PredictRequest struct {
	Cube              []byte  `json:"cube"`
	FieldAreaAcres    float64 `json:"field_area_acres"`
	FertilizerRateInr float64 `json:"fertilizer_rate_inr"`
	Owner             string  `json:"owner,omitempty"`
	ImageName         string  `json:"image_name,omitempty"`
}

// Prediction is the flat response row shared by Predict and ListPredictions.
type Prediction struct {
	ID                      string    `json:"id,omitempty"`
	Owner                   string    `json:"owner,omitempty"`
	ImagePath               string    `json:"image_path,omitempty"`
	Cultivar                string    `json:"cultivar_prediction"`
	Confidence              float64   `json:"confidence"`
	GrainWeight             float64   `json:"grain_weight"`
	Gsw                     float64   `json:"gsw"`
	PhiPS2                  float64   `json:"phips2"`
	FertilizerScore         float64   `json:"fertilizer_score"`
	FieldAreaAcres          float64   `json:"field_area_acres"`
	FertilizerRateInr       float64   `json:"fertilizer_rate_inr"`
	UreaRequiredKg          float64   `json:"urea_required_kg"`
	FertilizerCostInr       float64   `json:"fertilizer_cost_inr"`
	TotalProductionQuintals float64   `json:"total_production_quintals"`
	CultivarProbs           []float64 `json:"cultivar_probs"`
	SpectralData            []float64 `json:"spectral_data,omitempty"`
	Rescaled                bool      `json:"rescaled,omitempty"`
	CreatedAt               string    `json:"created_at,omitempty"`
}

// ListRequest filters saved predictions. An empty owner lists all owners.
type ListRequest struct {
	Owner string `json:"owner,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// ListResponse carries saved predictions, newest first.
type ListResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// #endregion messages
