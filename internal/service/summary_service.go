package service

import (
	"context"
	"fmt"
	"time"

	"medtrack/internal/model"
	"medtrack/internal/repository"
)

// Summary is everything a user logged on one day.
type Summary struct {
	Date         string                  `json:"date"`
	Consumptions []model.Consumption     `json:"consumptions"`
	Procedures   []model.ProcedureRecord `json:"procedures"`
}

// SummaryService builds the daily overview.
type SummaryService interface {
	Today(ctx context.Context, userID uint) (*Summary, error)
}

type summaryService struct {
	consumptionRepo repository.ConsumptionRepository
	recordRepo      repository.ProcedureRecordRepository
	now             func() time.Time
}

// NewSummaryService creates a new summary service.
func NewSummaryService(consumptionRepo repository.ConsumptionRepository, recordRepo repository.ProcedureRecordRepository) SummaryService {
	return &summaryService{
		consumptionRepo: consumptionRepo,
		recordRepo:      recordRepo,
		now:             time.Now,
	}
}

// Today uses the server's local calendar date.
func (s *summaryService) Today(ctx context.Context, userID uint) (*Summary, error) {
	today := calendarDay(s.now())

	consumptions, err := s.consumptionRepo.ListForDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	procedures, err := s.recordRepo.ListForDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("list procedure records: %w", err)
	}

	return &Summary{
		Date:         today.Format(DateLayout),
		Consumptions: consumptions,
		Procedures:   procedures,
	}, nil
}
