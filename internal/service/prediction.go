package service

import (
	"context"
	"errors"
	"math"

	"automind-api/internal/model"
	"automind-api/internal/predictor"
	"automind-api/pkg/apierror"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	// NoValueMessage is returned in place of a negative estimate.
	NoValueMessage = "This car does not have any value."

	// EstimateMessage accompanies a usable estimate.
	EstimateMessage = "Based on the provided information, this is the estimated market value of your vehicle."

	currencySymbol = "₹"
)

// CatalogView is the set of dropdown values offered to the estimate form.
type CatalogView struct {
	Companies []string `json:"companies"`
	FuelTypes []string `json:"fuel_types"`
	Years     []int    `json:"years"`
}

// PredictionService wraps the Predictor collaborator and the dataset catalog.
type PredictionService struct {
	predictor predictor.Predictor
	catalog   *predictor.Catalog
	log       *zap.Logger
}

// NewPredictionService creates a new prediction service. A nil catalog is
// treated as empty.
func NewPredictionService(p predictor.Predictor, catalog *predictor.Catalog, logger *zap.Logger) *PredictionService {
	if catalog == nil {
		catalog = predictor.EmptyCatalog()
	}
	return &PredictionService{
		predictor: p,
		catalog:   catalog,
		log:       logger.Named("prediction"),
	}
}

// Catalog returns the companies, fuel types and years known to the dataset.
func (s *PredictionService) Catalog() CatalogView {
	return CatalogView{
		Companies: s.catalog.Companies(),
		FuelTypes: s.catalog.FuelTypes(),
		Years:     s.catalog.Years(),
	}
}

// Models returns the model names for company; empty for unknown companies.
func (s *PredictionService) Models(company string) []string {
	return s.catalog.Models(company)
}

// Predict estimates the resale value described by in.
func (s *PredictionService) Predict(ctx context.Context, in model.PredictionInput) (*model.Prediction, error) {
	in.Normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if s.predictor == nil {
		return nil, apierror.CollaboratorUnavailable("Model not loaded")
	}

	value, err := s.predictor.Predict(ctx, in)
	if errors.Is(err, predictor.ErrNotConfigured) {
		return nil, apierror.CollaboratorUnavailable("Model not loaded")
	}
	if err != nil {
		s.log.Warn("prediction failed", zap.Error(err))
		return nil, apierror.CollaboratorUnavailable("Price prediction is currently unavailable. Please try again later.")
	}

	return formatPrediction(value), nil
}

func formatPrediction(value float64) *model.Prediction {
	if value < 0 {
		return &model.Prediction{Message: NoValueMessage}
	}

	formatted := currencySymbol + humanize.Comma(int64(math.RoundToEven(value)))
	return &model.Prediction{
		PredictedValue: &value,
		FormattedPrice: &formatted,
		Message:        EstimateMessage,
	}
}
