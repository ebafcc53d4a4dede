package model

import "strings"

// PredictionInput describes the car whose resale value is estimated.
type PredictionInput struct {
	Company        string `json:"company" validate:"required"`
	ModelName      string `json:"model_name" validate:"required"`
	Year           int    `json:"year" validate:"required,gt=0"`
	DistanceDriven *int   `json:"distance_driven" validate:"required,gte=0"`
	FuelType       string `json:"fuel_type" validate:"required"`
}

// Normalize trims surrounding whitespace from the text fields.
func (p *PredictionInput) Normalize() {
	p.Company = strings.TrimSpace(p.Company)
	p.ModelName = strings.TrimSpace(p.ModelName)
	p.FuelType = strings.TrimSpace(p.FuelType)
}

// Prediction is the user-facing estimate. PredictedValue is nil when the
// model yields a negative value.
type Prediction struct {
	PredictedValue *float64 `json:"predicted_value"`
	FormattedPrice *string  `json:"formatted_price"`
	Message        string   `json:"message"`
}
