// Package service wires the rebalancer to storage as the public jar
// operation surface. Every mutation is all-or-nothing: shape validation,
// percent/amount conversion, and rebalance planning all happen before a
// single atomic snapshot replace. A failure at any step leaves the
// stored allocation table untouched.
package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/eshaffer321/jarbudget-backend/internal/domain/jar"
	"github.com/eshaffer321/jarbudget-backend/internal/domain/rebalance"
	"github.com/eshaffer321/jarbudget-backend/internal/infrastructure/storage"
)

// CreateJarRequest describes one jar to create. Percent and Amount are
// mutually exclusive; Amount is converted through the owner's total
// income before planning.
type CreateJarRequest struct {
	Name        string
	Description string
	Percent     *float64
	Amount      *float64
}

// UpdateJarRequest describes one jar to update. Nil fields stay
// unchanged. NewPercent and NewAmount are mutually exclusive.
type UpdateJarRequest struct {
	Name           string
	NewName        *string
	NewDescription *string
	NewPercent     *float64
	NewAmount      *float64
}

// CreateRequest is a batch jar creation. Confidence is the upstream
// parser's score; it is echoed back for caller-side clarification
// thresholds and never influences the engine.
type CreateRequest struct {
	Jars       []CreateJarRequest
	Confidence float64
}

// UpdateRequest is a batch jar update.
type UpdateRequest struct {
	Jars       []UpdateJarRequest
	Confidence float64
}

// DeleteRequest is a batch jar deletion. Reason appears only in the
// rebalance summary.
type DeleteRequest struct {
	Names  []string
	Reason string
}

// JarView is a jar plus its derived currency amounts.
type JarView struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Percent        float64 `json:"percent"`
	CurrentPercent float64 `json:"current_percent"`
	Amount         float64 `json:"amount"`
	CurrentAmount  float64 `json:"current_amount"`
}

// OperationResult is the outcome of a successful mutation: the complete
// new jar list, the rebalance report, and a correlation ID for logs.
type OperationResult struct {
	OperationID string
	Jars        []JarView
	Report      rebalance.Report
	Confidence  float64
}

// JarService is the public operation surface over one repository.
type JarService struct {
	repo          storage.Repository
	logger        *slog.Logger
	defaultIncome float64

	// Per-owner locking: load-plan-commit must be serialized per owner,
	// while different owners proceed in parallel.
	ownerLocks map[string]*sync.Mutex
	locksMutex sync.Mutex
}

// Option configures a JarService.
type Option func(*JarService)

// WithDefaultIncome sets the income assumed for owners who have not set
// one. Zero (the default) makes amount-based requests fail until the
// owner sets an income.
func WithDefaultIncome(income float64) Option {
	return func(s *JarService) { s.defaultIncome = income }
}

// NewJarService creates a new jar service.
func NewJarService(repo storage.Repository, logger *slog.Logger, opts ...Option) *JarService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &JarService{
		repo:       repo,
		logger:     logger,
		ownerLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockOwner returns the mutex serializing operations for one owner,
// creating it on first use.
func (s *JarService) lockOwner(owner string) *sync.Mutex {
	s.locksMutex.Lock()
	defer s.locksMutex.Unlock()

	lock, ok := s.ownerLocks[owner]
	if !ok {
		lock = &sync.Mutex{}
		s.ownerLocks[owner] = lock
	}
	return lock
}

// CreateJars creates one or more jars, rebalancing existing jars to make
// room. The whole batch succeeds or the table is left untouched.
func (s *JarService) CreateJars(owner string, req CreateRequest) (*OperationResult, error) {
	if len(req.Jars) == 0 {
		return nil, jar.NewValidationError("no jars to create")
	}

	lock := s.lockOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	snapshot, income, err := s.loadState(owner)
	if err != nil {
		return nil, err
	}

	specs := make([]rebalance.CreateSpec, 0, len(req.Jars))
	for _, r := range req.Jars {
		percent, err := resolvePercent(r.Name, r.Percent, r.Amount, income)
		if err != nil {
			return nil, err
		}
		specs = append(specs, rebalance.CreateSpec{
			Name:        r.Name,
			Description: r.Description,
			Percent:     percent,
		})
	}

	result, err := rebalance.Create(snapshot, specs)
	if err != nil {
		return nil, err
	}

	return s.commit(owner, "create", result, income, req.Confidence)
}

// UpdateJars applies one or more jar updates as a single transaction.
func (s *JarService) UpdateJars(owner string, req UpdateRequest) (*OperationResult, error) {
	if len(req.Jars) == 0 {
		return nil, jar.NewValidationError("no jars to update")
	}

	lock := s.lockOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	snapshot, income, err := s.loadState(owner)
	if err != nil {
		return nil, err
	}

	specs := make([]rebalance.UpdateSpec, 0, len(req.Jars))
	for _, r := range req.Jars {
		if r.NewName == nil && r.NewDescription == nil && r.NewPercent == nil && r.NewAmount == nil {
			return nil, jar.NewValidationError(
				fmt.Sprintf("update for jar %q requests no changes", r.Name))
		}
		spec := rebalance.UpdateSpec{
			Name:           r.Name,
			NewName:        r.NewName,
			NewDescription: r.NewDescription,
		}
		if r.NewPercent != nil || r.NewAmount != nil {
			percent, err := resolvePercent(r.Name, r.NewPercent, r.NewAmount, income)
			if err != nil {
				return nil, err
			}
			spec.NewPercent = &percent
		}
		specs = append(specs, spec)
	}

	result, err := rebalance.Update(snapshot, specs)
	if err != nil {
		return nil, err
	}

	return s.commit(owner, "update", result, income, req.Confidence)
}

// DeleteJars removes the named jars and redistributes their share.
func (s *JarService) DeleteJars(owner string, req DeleteRequest) (*OperationResult, error) {
	if len(req.Names) == 0 {
		return nil, jar.NewValidationError("no jars to delete")
	}

	lock := s.lockOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	snapshot, income, err := s.loadState(owner)
	if err != nil {
		return nil, err
	}

	result, err := rebalance.Delete(snapshot, req.Names, req.Reason)
	if err != nil {
		return nil, err
	}

	return s.commit(owner, "delete", result, income, 0)
}

// ListJars returns all jars with derived amounts. Never fails for an
// unknown owner; the list is just empty.
func (s *JarService) ListJars(owner string) ([]JarView, error) {
	lock := s.lockOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	snapshot, income, err := s.loadState(owner)
	if err != nil {
		return nil, err
	}
	return viewsOf(snapshot, income), nil
}

// TotalIncome returns the owner's income scalar, falling back to the
// configured default when unset.
func (s *JarService) TotalIncome(owner string) (float64, error) {
	settings, err := s.repo.GetSettings(owner)
	if err != nil {
		return 0, fmt.Errorf("loading settings: %w", err)
	}
	if settings == nil {
		return s.defaultIncome, nil
	}
	return settings.TotalIncome, nil
}

// SetTotalIncome stores the owner's income scalar. The allocation table
// is not touched: percents are income-independent.
func (s *JarService) SetTotalIncome(owner string, income float64) error {
	if income <= 0 {
		return jar.NewValidationError("total income must be positive")
	}
	if err := s.repo.SaveSettings(&storage.UserSettings{Owner: owner, TotalIncome: income}); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	s.logger.Info("total income updated", "owner", owner, "income", income)
	return nil
}

// loadState loads the owner's snapshot and income scalar.
func (s *JarService) loadState(owner string) ([]jar.Jar, float64, error) {
	records, err := s.repo.LoadJars(owner)
	if err != nil {
		return nil, 0, fmt.Errorf("loading jars: %w", err)
	}
	income, err := s.TotalIncome(owner)
	if err != nil {
		return nil, 0, err
	}

	snapshot := make([]jar.Jar, len(records))
	for i, r := range records {
		snapshot[i] = jar.Jar{
			Name:           r.Name,
			Description:    r.Description,
			Percent:        r.Percent,
			CurrentPercent: r.CurrentPercent,
		}
	}
	return snapshot, income, nil
}

// commit persists a planned snapshot and assembles the caller-facing
// result. The repository replace is the single point of mutation.
func (s *JarService) commit(owner, operation string, result *rebalance.Result, income, confidence float64) (*OperationResult, error) {
	records := make([]storage.JarRecord, len(result.Jars))
	for i, j := range result.Jars {
		records[i] = storage.JarRecord{
			Owner:          owner,
			Name:           j.Name,
			Description:    j.Description,
			Percent:        j.Percent,
			CurrentPercent: j.CurrentPercent,
			Position:       i,
		}
	}

	if err := s.repo.ReplaceJars(owner, records); err != nil {
		return nil, fmt.Errorf("committing snapshot: %w", err)
	}

	opID := uuid.NewString()
	s.logger.Info("jar snapshot replaced",
		"owner", owner,
		"operation", operation,
		"operation_id", opID,
		"jars", len(result.Jars),
		"rebalanced", len(result.Report.Changes),
		"confidence", confidence,
	)

	return &OperationResult{
		OperationID: opID,
		Jars:        viewsOf(result.Jars, income),
		Report:      result.Report,
		Confidence:  confidence,
	}, nil
}

// resolvePercent enforces percent/amount mutual exclusivity and converts
// amounts through the income scalar.
func resolvePercent(name string, percent, amount *float64, income float64) (float64, error) {
	switch {
	case percent != nil && amount != nil:
		return 0, jar.NewValidationError(
			fmt.Sprintf("jar %q: percent and amount are mutually exclusive", name))
	case percent != nil:
		return *percent, nil
	case amount != nil:
		return jar.PercentFromAmount(*amount, income)
	default:
		return 0, jar.NewValidationError(
			fmt.Sprintf("jar %q: either percent or amount is required", name))
	}
}

func viewsOf(jars []jar.Jar, income float64) []JarView {
	views := make([]JarView, len(jars))
	for i, j := range jars {
		views[i] = JarView{
			Name:           j.Name,
			Description:    j.Description,
			Percent:        j.Percent,
			CurrentPercent: j.CurrentPercent,
			Amount:         j.Amount(income),
			CurrentAmount:  j.CurrentAmount(income),
		}
	}
	return views
}
