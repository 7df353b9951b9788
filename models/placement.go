package models

// ====== 接口结构 ======

// BoxSpec is the box half of a palletization request.
type BoxSpec struct {
	Length float64 `json:"length" binding:"gt=0"`
	Width  float64 `json:"width" binding:"gt=0"`
	Height float64 `json:"height" binding:"gt=0"`
	Weight float64 `json:"weight" binding:"gte=0"`
}

// PalletSpec is the pallet half of a palletization request.
type PalletSpec struct {
	Length    float64 `json:"length" binding:"gt=0"`
	Width     float64 `json:"width" binding:"gt=0"`
	Height    float64 `json:"height" binding:"gt=0"`
	MaxWeight float64 `json:"max_weight" binding:"gte=0"`
}

// PalletizationRequest asks for a single-SKU stacking plan. A nil Box means
// there is nothing to stack.
type PalletizationRequest struct {
	Box    *BoxSpec   `json:"box"`
	Pallet PalletSpec `json:"pallet"`
}

// Parse validates the request and converts it into domain types.
func (r PalletizationRequest) Parse() (Container, *BoxType, error) {
	c, err := NewContainer(r.Pallet.Length, r.Pallet.Width, r.Pallet.Height, r.Pallet.MaxWeight)
	if err != nil {
		return Container{}, nil, err
	}
	if r.Box == nil {
		return c, nil, nil
	}
	bt, err := NewBoxType("Box", r.Box.Length, r.Box.Width, r.Box.Height, r.Box.Weight)
	if err != nil {
		return Container{}, nil, err
	}
	return c, &bt, nil
}

type GraspOffset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	DZ float64 `json:"dz"`
}

type GraspPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BoxPlacement is the robot-facing record for one placed box.
type BoxPlacement struct {
	BoxID       int         `json:"box_id"`
	Dimensions  Dims        `json:"dimensions"`
	GraspOffset GraspOffset `json:"grasp_offset"`
	GraspPoint  GraspPoint  `json:"grasp_point"`
	LayerID     int         `json:"layer_id"`
	Rotated     bool        `json:"rotated"`
	Rotation    int         `json:"rotation"`
}

type PalletizationResponse struct {
	PalletStack []BoxPlacement `json:"pallet_stack"`
	ItemCount   int            `json:"item_count"`
	Utilization float64        `json:"utilization"`
}

// Artifact is the persisted output of a run.
type Artifact struct {
	PalletStack []BoxPlacement `json:"pallet_stack"`
}
