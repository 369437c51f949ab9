package models

// Query bindings for the regime HTTP endpoints.

type RegimeRequest struct {
	Refresh bool `query:"refresh" json:"refresh"`
}

type HistoryRequest struct {
	Days int `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}

type MTFRequest struct {
	Days int `query:"days" json:"days" default:"30" validate:"gte=30,lte=365"`
}
