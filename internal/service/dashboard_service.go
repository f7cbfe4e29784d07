package service

import (
	"time"

	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
)

const maxIntakeDays = 366

type DashboardService interface {
	GetDailyIntake(owner uuid.UUID, days int) ([]repository.DailyIntake, error)
	GetLedgerStats(owner uuid.UUID) (*repository.LedgerStats, error)
}

type dashboardService struct {
	entryRepo repository.StockEntryRepository
}

func NewDashboardService(entryRepo repository.StockEntryRepository) DashboardService {
	return &dashboardService{entryRepo: entryRepo}
}

func (s *dashboardService) GetDailyIntake(owner uuid.UUID, days int) ([]repository.DailyIntake, error) {
	if days < 1 {
		days = 7
	}
	if days > maxIntakeDays {
		days = maxIntakeDays
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.entryRepo.GetDailyIntake(owner, startDate, endDate)
}

func (s *dashboardService) GetLedgerStats(owner uuid.UUID) (*repository.LedgerStats, error) {
	return s.entryRepo.GetLedgerStats(owner)
}
