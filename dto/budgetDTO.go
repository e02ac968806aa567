package dto

// UpdateFieldRequest carries one wizard field change: which record it
// belongs to ("petData" or "userData"), the field name and its new value.
type UpdateFieldRequest struct {
	Record string `json:"record" binding:"required"`
	Field  string `json:"field" binding:"required"`
	Value  string `json:"value"`
}

type SelectPlanRequest struct {
	Plan   string  `json:"plan" binding:"required"`
	Precio float64 `json:"precio"`
}

// WizardStateResponse mirrors the engine for rendering: the single visible
// step, the progress fraction and both records.
type WizardStateResponse struct {
	SessionID string            `json:"session_id"`
	Step      int               `json:"step"`
	Total     int               `json:"total"`
	Progress  float64           `json:"progress"`
	Terminal  bool              `json:"terminal"`
	PetData   map[string]string `json:"petData"`
	UserData  map[string]string `json:"userData"`
	Plan      string            `json:"plan"`
	Precio    float64           `json:"precio"`
}

// EditorSaveRequest carries the admin's whole draft back: flat fields plus
// dotted paths ("ownerData.nombre") addressing the nested sub-record.
type EditorSaveRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}
