package application

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/runwhen-contrib/ccblogger/pkg/domain"
)

type AuditService struct {
	repo domain.Repository
}

// Compile-time check that AuditService implements AuditLogger
var _ domain.AuditLogger = (*AuditService)(nil)

func NewAuditService(repo domain.Repository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Log(action string, actor string, metadata map[string]interface{}) error {
	// Get the latest event to continue the hash chain
	events, _ := s.repo.LoadEvents()
	prevHash := ""
	if len(events) > 0 {
		prevHash = events[len(events)-1].Hash
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Action:    action,
		Actor:     actor,
		Metadata:  metadata,
		PrevHash:  prevHash,
	}
	event.Hash = event.CalculateHash()

	return s.repo.RecordEvent(event)
}

func (s *AuditService) GetTimeline() ([]domain.Event, error) {
	return s.repo.LoadEvents()
}

// TimelineSince returns the events recorded at or after the given time.
func (s *AuditService) TimelineSince(since time.Time) ([]domain.Event, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}

	filtered := []domain.Event{}
	for _, e := range events {
		if !e.Timestamp.Before(since) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *AuditService) VerifyIntegrity() ([]string, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}

	var violations []string
	lastHash := ""

	for i, e := range events {
		// 1. Verify links
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("Event %d (%s): PrevHash mismatch. Audit trail broken.", i, e.ID))
		}

		// 2. Verify self-hash (requires a shallow copy to check without the hash field)
		expected := e.CalculateHash()
		if e.Hash != expected {
			violations = append(violations, fmt.Sprintf("Event %d (%s): Content hash mismatch. Possible tampering.", i, e.ID))
		}

		lastHash = e.Hash
	}

	return violations, nil
}

// GetVelocity returns the average generated posts per day since the first
// recorded generation.
func (s *AuditService) GetVelocity() (float64, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	var firstGenerate time.Time
	generated := 0

	for _, e := range events {
		if e.Action == domain.ActionGenerate {
			if firstGenerate.IsZero() {
				firstGenerate = e.Timestamp
			}
			generated++
		}
	}

	if generated == 0 {
		return 0, nil
	}

	days := time.Since(firstGenerate).Hours() / 24.0
	if days < 1 {
		days = 1 // Floor at 1 day to avoid infinity/large spikes
	}

	return float64(generated) / days, nil
}
