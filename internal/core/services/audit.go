package services

import (
	"context"
	"fmt"
	"time"
)

type AuditFinding struct {
	TicketID string
	TrainID  string
	Row      int
	Col      int
	Problem  string
}

func (f AuditFinding) String() string {
	return fmt.Sprintf("ticket %s on train %s seat %d/%d: %s", f.TicketID, f.TrainID, f.Row, f.Col, f.Problem)
}

// Audit cross-checks every ticket against the seat matrices. Bookings
// are paused while it runs so the two stores are read at one point.
func (s *BookingService) Audit() ([]AuditFinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.backend.Accounts.Snapshot()
	if err != nil {
		return nil, err
	}

	type seat struct {
		train    string
		row, col int
	}
	claimed := make(map[seat]string)

	var findings []AuditFinding
	for _, u := range users {
		for _, t := range u.Tickets {
			finding := AuditFinding{TicketID: t.ID, TrainID: t.TrainID, Row: t.SeatRow, Col: t.SeatCol}

			train, err := s.backend.Catalog.Train(t.TrainID)
			switch {
			case err != nil:
				finding.Problem = "train not in catalog"
			case !train.Seats.InRange(t.SeatRow, t.SeatCol):
				finding.Problem = "seat outside the matrix"
			case train.Seats.IsAvailable(t.SeatRow, t.SeatCol):
				finding.Problem = "seat is not marked booked"
			}

			key := seat{t.TrainID, t.SeatRow, t.SeatCol}
			if other, dup := claimed[key]; dup && finding.Problem == "" {
				finding.Problem = "seat also held by ticket " + other
			}
			claimed[key] = t.ID

			if finding.Problem != "" {
				findings = append(findings, finding)
			}
		}
	}

	return findings, nil
}

func (s *BookingService) RunBackgroundAudit(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.backend.Logger.Info("background audit started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.backend.Logger.Info("background audit stopped")
			return
		case <-ticker.C:
			s.processAudit()
		}
	}
}

func (s *BookingService) processAudit() {
	findings, err := s.Audit()
	if err != nil {
		s.backend.Logger.Error("audit failed", "error", err)
		return
	}

	if len(findings) == 0 {
		return
	}

	s.backend.Logger.Warn("reservation audit found inconsistencies", "count", len(findings))
	for _, f := range findings {
		s.backend.Logger.Warn("audit finding", "detail", f.String())
	}
}
