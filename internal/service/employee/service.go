package employee

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-normalizer/internal/service/ingest"
	"github.com/cmlabs-hris/attendance-normalizer/internal/service/scoring"
	"golang.org/x/sync/errgroup"
)

const firstGeneratedID = 147

var generatedIDPattern = regexp.MustCompile(`^C(\d+)$`)

type EmployeeServiceImpl struct {
	employeeRepository employee.EmployeeRepository
	transactor         database.Transactor

	// guards read-modify-write of the collection
	mu *sync.Mutex
}

func NewEmployeeService(
	employeeRepository employee.EmployeeRepository,
	transactor database.Transactor,
	writeLock *sync.Mutex,
) employee.EmployeeService {
	if writeLock == nil {
		writeLock = &sync.Mutex{}
	}
	return &EmployeeServiceImpl{
		employeeRepository: employeeRepository,
		transactor:         transactor,
		mu:                 writeLock,
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	all, err := s.employeeRepository.List(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]employee.Employee, 0, len(all))
	for _, emp := range all {
		if !principal.CanSee(emp.ID) {
			continue
		}
		if filter.Department != "" && !strings.EqualFold(emp.Department, filter.Department) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(emp.Name), search) && !strings.Contains(strings.ToLower(emp.ID), search) {
			continue
		}
		matched = append(matched, emp)
	}

	total := len(matched)
	start := min((filter.Page-1)*filter.Limit, total)
	end := min(start+filter.Limit, total)

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", start+1, end, total)
	if total == 0 || start == end {
		showing = fmt.Sprintf("0 of %d", total)
	}

	return employee.ListEmployeeResponse{
		TotalCount: int64(total),
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  matched[start:end],
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	id = sheet.NormalizeIdentifier(id)
	if !principal.CanSee(id) {
		return employee.Employee{}, employee.ErrUnauthorized
	}

	emp, err := s.employeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

// UpsertEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpsertEmployee(ctx context.Context, req employee.UpsertEmployeeRequest) (employee.Employee, error) {
	if err := requireManager(ctx); err != nil {
		return employee.Employee{}, err
	}

	req.ID = sheet.NormalizeIdentifier(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var saved employee.Employee
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		all, err := s.employeeRepository.List(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}

		if req.ID == "" {
			req.ID = nextEmployeeID(all)
		} else if !validator.IsValidEmployeeCode(req.ID) {
			return validator.ValidationErrors{{Field: "id", Message: "id must be letters, digits or . _ / -"}}
		}

		emp := employee.Employee{
			ID:          req.ID,
			Name:        req.Name,
			Department:  ingest.MergeField(employee.DefaultDepartment, req.Department, ingest.IsIdentityPlaceholder),
			Company:     ingest.MergeField(employee.DefaultCompany, req.Company, ingest.IsIdentityPlaceholder),
			Details:     req.Details,
			MonthlyData: make(map[string][]employee.DayRecord, len(req.MonthlyData)),
		}
		for ym, days := range req.MonthlyData {
			for _, d := range days {
				emp.PutDay(ym, d)
			}
		}
		for _, existing := range all {
			if existing.ID == emp.ID {
				emp.ReadNotificationKeys = existing.ReadNotificationKeys
				break
			}
		}

		saved = scoring.Enrich(emp.Clone())
		if err := s.employeeRepository.UpsertMany(txCtx, []employee.Employee{saved}); err != nil {
			return err
		}
		return s.employeeRepository.RemoveTombstones(txCtx, []string{saved.ID})
	})
	if err != nil {
		return employee.Employee{}, err
	}

	slog.Info("employee saved", "employee_id", saved.ID)
	return saved, nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	if err := requireManager(ctx); err != nil {
		return err
	}

	id = sheet.NormalizeIdentifier(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.employeeRepository.Delete(txCtx, id); err != nil {
			return err
		}
		return s.employeeRepository.AddTombstone(txCtx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("employee deleted", "employee_id", id)
	return nil
}

// MarkNotificationRead implements employee.EmployeeService.
func (s *EmployeeServiceImpl) MarkNotificationRead(ctx context.Context, req employee.MarkNotificationReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}

	id := sheet.NormalizeIdentifier(req.EmployeeID)
	if !principal.CanSee(id) {
		return employee.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.employeeRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !hasAnomaly(emp, req.Key) {
		return employee.ErrNotificationNotFound
	}
	if emp.HasRead(req.Key) {
		return nil
	}

	emp.MarkRead(req.Key)
	return s.employeeRepository.UpsertMany(ctx, []employee.Employee{emp})
}

// MarkAllNotificationsRead implements employee.EmployeeService.
func (s *EmployeeServiceImpl) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.employeeRepository.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}

	marked := 0
	var changed []employee.Employee
	for _, emp := range all {
		if !principal.CanSee(emp.ID) {
			continue
		}
		pending := emp.PendingNotifications()
		if len(pending) == 0 {
			continue
		}
		for _, n := range pending {
			emp.MarkRead(n.Key)
		}
		marked += len(pending)
		changed = append(changed, emp)
	}

	if len(changed) == 0 {
		return 0, nil
	}

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.employeeRepository.UpsertMany(txCtx, changed)
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// SyncBaseline implements employee.EmployeeService.
func (s *EmployeeServiceImpl) SyncBaseline(ctx context.Context, baseline []employee.Employee) (employee.SyncBaselineResponse, error) {
	if err := requireManager(ctx); err != nil {
		return employee.SyncBaselineResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		local      []employee.Employee
		tombstones employee.Tombstones
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.employeeRepository.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		local = list
		return nil
	})

	g.Go(func() error {
		t, err := s.employeeRepository.ListTombstones(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list tombstones: %w", err)
		}
		tombstones = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return employee.SyncBaselineResponse{}, err
	}

	merged := scoring.EnrichAll(ingest.Reconcile(local, baseline, tombstones))

	resp := employee.SyncBaselineResponse{
		LocalCount:    len(local),
		BaselineCount: len(baseline),
		MergedCount:   len(merged),
	}
	var stale []string
	for _, b := range baseline {
		if tombstones.Has(sheet.NormalizeIdentifier(b.ID)) {
			resp.SuppressedCount++
		}
	}
	for _, l := range local {
		if tombstones.Has(l.ID) {
			stale = append(stale, l.ID)
		}
	}

	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, id := range stale {
			if err := s.employeeRepository.Delete(txCtx, id); err != nil {
				return err
			}
		}
		return s.employeeRepository.UpsertMany(txCtx, merged)
	})
	if err != nil {
		return employee.SyncBaselineResponse{}, fmt.Errorf("failed to commit baseline: %w", err)
	}

	slog.Info("baseline reconciled",
		"local", resp.LocalCount,
		"baseline", resp.BaselineCount,
		"merged", resp.MergedCount,
		"suppressed", resp.SuppressedCount,
	)
	return resp, nil
}

func requireManager(ctx context.Context) error {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	if !principal.IsManager() {
		return user.ErrManagerAccessRequired
	}
	return nil
}

// nextEmployeeID allocates C<n> one above the highest generated identifier.
func nextEmployeeID(all []employee.Employee) string {
	next := firstGeneratedID
	for _, e := range all {
		m := generatedIDPattern.FindStringSubmatch(e.ID)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n >= next {
			next = n + 1
		}
	}
	return "C" + strconv.Itoa(next)
}

func hasAnomaly(emp employee.Employee, key string) bool {
	for _, d := range emp.Records() {
		if d.IsCycleImperfect && employee.NotificationKey(emp.ID, d.Date) == key {
			return true
		}
	}
	return false
}
