package service

import (
	"context"
	"fmt"

	"github.com/AshishJayaram/log-reader-backend/internal/models"
	"github.com/AshishJayaram/log-reader-backend/internal/repository"
)

type MonitoringService struct {
	logRepo repository.LogRepo
}

func NewMonitoringService(logRepo repository.LogRepo) *MonitoringService {
	return &MonitoringService{logRepo: logRepo}
}

// Count returns the number of stored logs.
func (s *MonitoringService) Count(ctx context.Context) (int, error) {
	n, err := s.logRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count logs: %w", err)
	}
	return n, nil
}

// GetStats returns per-level counts of everything stored so far.
func (s *MonitoringService) GetStats(ctx context.Context) (models.LogStats, error) {
	st, err := s.logRepo.Stats(ctx)
	if err != nil {
		return models.LogStats{}, err
	}
	if st.ByLevel == nil {
		st.ByLevel = map[string]int{}
	}
	return st, nil
}
