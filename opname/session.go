// Package opname runs stock-count sessions: operators record physical
// counts, the catalog is corrected immediately and discrepancies are sent
// to the advisor in the background.
package opname

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"apotek/advisor"
	"apotek/catalog"
	"apotek/metrics"
	"apotek/model"

	"go.uber.org/zap"
)

var (
	ErrSessionClosed   = errors.New("stock count session is closed")
	ErrSessionNotFound = errors.New("stock count session not found")
)

// Session accumulates the corrections made since it was opened.
type Session struct {
	ID       string
	OpenedAt time.Time

	store   *catalog.Store
	advisor advisor.Advisor
	metrics *metrics.Metrics
	log     *zap.Logger

	// ctx is cancelled on Close and bounds every advisory request.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	changes []model.StockCountChange
	closed  bool
}

// Count applies a physical count. The correction is written whatever the
// advisor later says; a differing count additionally starts an analysis
// that fills in the change's Analysis when it completes.
func (s *Session) Count(ctx context.Context, medicineID, raw string) (model.StockCountChange, error) {
	counted, err := catalog.ParseCount(raw)
	if err != nil {
		return model.StockCountChange{}, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return model.StockCountChange{}, ErrSessionClosed
	}

	corr, err := s.store.ApplyStockCount(ctx, medicineID, counted)
	if err != nil {
		return model.StockCountChange{}, err
	}
	changed := corr.Changed()
	s.countOutcome(changed)

	change := model.StockCountChange{
		MedicineID:      corr.Medicine.ID,
		Name:            corr.Medicine.Name,
		Unit:            corr.Medicine.Unit,
		OldStock:        corr.Previous,
		NewStock:        counted,
		AnalysisPending: changed,
		CountedAt:       *corr.Medicine.LastStockOpname,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return change, nil
	}
	idx := len(s.changes)
	s.changes = append(s.changes, change)
	if changed {
		recorded := *corr.Medicine
		recorded.SystemStock = corr.Previous
		s.wg.Add(1)
		go s.analyze(idx, advisor.Discrepancy{Medicine: recorded, Actual: counted})
	}
	s.mu.Unlock()

	return change, nil
}

func (s *Session) countOutcome(changed bool) {
	if s.metrics == nil {
		return
	}
	outcome := "unchanged"
	if changed {
		outcome = "changed"
	}
	s.metrics.StockCorrections.WithLabelValues(outcome).Inc()
}

func (s *Session) analyze(idx int, d advisor.Discrepancy) {
	defer s.wg.Done()

	text, err := s.advisor.ExplainDiscrepancy(s.ctx, d)
	result := "ok"
	if err != nil {
		s.log.Warn("discrepancy analysis failed",
			zap.String("session", s.ID), zap.String("medicine_id", d.Medicine.ID), zap.Error(err))
		text = advisor.FailedText
		result = "error"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		result = "dropped"
	} else {
		s.changes[idx].Analysis = text
		s.changes[idx].AnalysisPending = false
	}
	if s.metrics != nil {
		s.metrics.AdvisoryRequests.WithLabelValues(result).Inc()
	}
}

// Wait blocks until every advisory request started so far has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// close cancels outstanding advisory requests; their results are
// discarded.
func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

type Summary struct {
	SessionID          string                   `json:"sessionId"`
	OpenedAt           time.Time                `json:"openedAt"`
	Changes            []model.StockCountChange `json:"changes"`
	TotalItems         int                      `json:"totalItems"`
	TotalDiscrepancies int                      `json:"totalDiscrepancies"`
	AccuracyPercent    int                      `json:"accuracyPercent"`
	PendingAnalyses    int                      `json:"pendingAnalyses"`
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		SessionID:  s.ID,
		OpenedAt:   s.OpenedAt,
		Changes:    make([]model.StockCountChange, len(s.changes)),
		TotalItems: len(s.changes),
	}
	copy(sum.Changes, s.changes)
	for _, c := range s.changes {
		if c.NewStock != c.OldStock {
			sum.TotalDiscrepancies++
		}
		if c.AnalysisPending {
			sum.PendingAnalyses++
		}
	}
	if sum.TotalItems > 0 {
		matched := float64(sum.TotalItems-sum.TotalDiscrepancies) / float64(sum.TotalItems)
		sum.AccuracyPercent = int(math.Floor(matched*100 + 0.5))
	}
	return sum
}
