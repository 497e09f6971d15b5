package employee

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-normalizer/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asPrincipal(t *testing.T, p user.Principal) context.Context {
	t.Helper()
	ctx, err := jwt.NewContext(context.Background(), jwt.NewJWTAuth("test-secret"), p)
	require.NoError(t, err)
	return ctx
}

func adminCtx(t *testing.T) context.Context {
	return asPrincipal(t, user.Principal{Username: "HR", Role: user.RoleAdmin})
}

func imperfectDay(day int, date string) employee.DayRecord {
	return employee.DayRecord{Date: date, Day: day, Status: employee.StatusPresent, IsCycleImperfect: true, PunchRecRaw: "09:00in"}
}

func seededStore() *memory.EmployeeStore {
	return memory.NewEmployeeStore(
		employee.Employee{
			ID: "C147", Name: "AWADESH KUMAR", Department: "Stores",
			MonthlyData: map[string][]employee.DayRecord{
				"2026-01": {imperfectDay(2, "02-01-2026"), imperfectDay(3, "03-01-2026")},
			},
		},
		employee.Employee{ID: "C150", Name: "PRIYA SHARMA", Department: "Accounts", MonthlyData: map[string][]employee.DayRecord{}},
		employee.Employee{ID: "X9", Name: "VISITOR", Department: "Stores", MonthlyData: map[string][]employee.DayRecord{}},
	)
}

func TestListEmployeesFiltersAndPaginates(t *testing.T) {
	svc := NewEmployeeService(seededStore(), nil, nil)
	ctx := adminCtx(t)

	resp, err := svc.ListEmployees(ctx, employee.EmployeeFilter{Department: "stores"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.TotalCount)
	assert.Equal(t, 50, resp.Limit)
	assert.Equal(t, "1-2 of 2", resp.Showing)

	resp, err = svc.ListEmployees(ctx, employee.EmployeeFilter{Search: "priya"})
	require.NoError(t, err)
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "C150", resp.Employees[0].ID)

	resp, err = svc.ListEmployees(ctx, employee.EmployeeFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "X9", resp.Employees[0].ID)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, "3-3 of 3", resp.Showing)

	resp, err = svc.ListEmployees(ctx, employee.EmployeeFilter{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, resp.Employees)
	assert.Equal(t, "0 of 3", resp.Showing)
}

func TestListEmployeesEmployeeSeesOnlySelf(t *testing.T) {
	svc := NewEmployeeService(seededStore(), nil, nil)
	ctx := asPrincipal(t, user.Principal{Username: "PRIYA SHARMA", Role: user.RoleEmployee, EmployeeID: "C150"})

	resp, err := svc.ListEmployees(ctx, employee.EmployeeFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "C150", resp.Employees[0].ID)

	_, err = svc.GetEmployee(ctx, "C147")
	assert.ErrorIs(t, err, employee.ErrUnauthorized)

	got, err := svc.GetEmployee(ctx, " c150 ")
	require.NoError(t, err)
	assert.Equal(t, "PRIYA SHARMA", got.Name)
}

func TestListEmployeesWithoutPrincipal(t *testing.T) {
	svc := NewEmployeeService(seededStore(), nil, nil)
	_, err := svc.ListEmployees(context.Background(), employee.EmployeeFilter{})
	assert.ErrorIs(t, err, user.ErrPrincipalMissing)
}

func TestUpsertEmployeeAllocatesNextID(t *testing.T) {
	store := seededStore()
	svc := NewEmployeeService(store, store, nil)
	ctx := adminCtx(t)

	saved, err := svc.UpsertEmployee(ctx, employee.UpsertEmployeeRequest{Name: "  NEW JOINER ", Department: "General"})
	require.NoError(t, err)
	assert.Equal(t, "C151", saved.ID)
	assert.Equal(t, "NEW JOINER", saved.Name)
	assert.Equal(t, employee.DefaultDepartment, saved.Department)
	assert.Equal(t, employee.DefaultCompany, saved.Company)
	assert.Equal(t, []string{employee.TagNew}, saved.Tags)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestNextEmployeeIDStartsAt147(t *testing.T) {
	assert.Equal(t, "C147", nextEmployeeID(nil))
	assert.Equal(t, "C147", nextEmployeeID([]employee.Employee{{ID: "C12"}, {ID: "EMP900"}}))
	assert.Equal(t, "C201", nextEmployeeID([]employee.Employee{{ID: "C200"}, {ID: "C150"}}))
}

func TestUpsertEmployeeReplacesAndKeepsReadKeys(t *testing.T) {
	store := seededStore()
	svc := NewEmployeeService(store, store, nil)
	ctx := adminCtx(t)

	require.NoError(t, svc.MarkNotificationRead(ctx, employee.MarkNotificationReadRequest{EmployeeID: "C147", Key: "C147-02-01-2026"}))

	saved, err := svc.UpsertEmployee(ctx, employee.UpsertEmployeeRequest{
		ID:   "c147",
		Name: "AWADESH KUMAR",
		MonthlyData: map[string][]employee.DayRecord{
			"2026-01": {{Date: "05-01-2026", Day: 5, Status: employee.StatusAbsent}, {Date: "04-01-2026", Day: 4, Status: employee.StatusPresent}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "C147", saved.ID)
	assert.Equal(t, []string{"C147-02-01-2026"}, saved.ReadNotificationKeys)
	require.Len(t, saved.MonthlyData["2026-01"], 2)
	assert.Equal(t, 4, saved.MonthlyData["2026-01"][0].Day)
	assert.Equal(t, 85, saved.ComplianceScore)
}

func TestUpsertEmployeeValidation(t *testing.T) {
	store := seededStore()
	svc := NewEmployeeService(store, store, nil)

	_, err := svc.UpsertEmployee(adminCtx(t), employee.UpsertEmployeeRequest{ID: "C1", Name: ""})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.UpsertEmployee(adminCtx(t), employee.UpsertEmployeeRequest{ID: "C#1", Name: "X"})
	assert.ErrorAs(t, err, &verrs)

	employeeCtx := asPrincipal(t, user.Principal{Role: user.RoleEmployee, EmployeeID: "C147"})
	_, err = svc.UpsertEmployee(employeeCtx, employee.UpsertEmployeeRequest{ID: "C147", Name: "X"})
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)
}

func TestDeleteEmployeeRecordsTombstone(t *testing.T) {
	store := seededStore()
	svc := NewEmployeeService(store, store, nil)
	ctx := adminCtx(t)

	require.NoError(t, svc.DeleteEmployee(ctx, "c150"))

	tombstones, err := store.ListTombstones(ctx)
	require.NoError(t, err)
	assert.True(t, tombstones.Has("C150"))

	assert.ErrorIs(t, svc.DeleteEmployee(ctx, "C150"), employee.ErrEmployeeNotFound)

	_, err = svc.SyncBaseline(ctx, []employee.Employee{{ID: "C150", Name: "PRIYA SHARMA"}})
	require.NoError(t, err)
	_, err = store.GetByID(ctx, "C150")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound, "baseline must not resurrect a deleted employee")
}

func TestMarkNotificationRead(t *testing.T) {
	store := seededStore()
	svc := NewEmployeeService(store, store, nil)
	ctx := asPrincipal(t, user.Principal{Role: user.RoleEmployee, EmployeeID: "C147"})

	err := svc.MarkNotificationRead(ctx, employee.MarkNotificationReadRequest{EmployeeID: "C147", Key: "C147-09-09-2026"})
	assert.ErrorIs(t, err, employee.ErrNotificationNotFound)

	err = svc.MarkNotificationRead(ctx, employee.MarkNotificationReadRequest{EmployeeID: "C150", Key: "C150-01-01-2026"})
	assert.ErrorIs(t, err, employee.ErrUnauthorized)

	require.NoError(t, svc.MarkNotificationRead(ctx, employee.MarkNotificationReadRequest{EmployeeID: "C147", Key: "C147-02-01-2026"}))
	require.NoError(t, svc.MarkNotificationRead(ctx, employee.MarkNotificationReadRequest{EmployeeID: "C147", Key: "C147-02-01-2026"}))

	emp, err := store.GetByID(context.Background(), "C147")
	require.NoError(t, err)
	assert.Equal(t, []string{"C147-02-01-2026"}, emp.ReadNotificationKeys)
	assert.Len(t, emp.PendingNotifications(), 1)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	store := seededStore()
	svc := NewEmployeeService(store, store, nil)
	ctx := adminCtx(t)

	n, err := svc.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSyncBaseline(t *testing.T) {
	store := seededStore()
	ctx := adminCtx(t)
	require.NoError(t, store.AddTombstone(ctx, "DEL"))
	svc := NewEmployeeService(store, store, nil)

	resp, err := svc.SyncBaseline(ctx, []employee.Employee{
		{ID: "c147", Name: "Baseline Name", Department: "Ignored", Company: "Copes Tech"},
		{ID: "DEL", Name: "Deleted"},
		{ID: "C300", Name: "From Baseline"},
	})
	require.NoError(t, err)
	assert.Equal(t, employee.SyncBaselineResponse{LocalCount: 3, BaselineCount: 3, MergedCount: 4, SuppressedCount: 1}, resp)

	emp, err := store.GetByID(ctx, "C147")
	require.NoError(t, err)
	assert.Equal(t, "AWADESH KUMAR", emp.Name)
	assert.Equal(t, "Stores", emp.Department)
	assert.Equal(t, "Copes Tech", emp.Company)

	added, err := store.GetByID(ctx, "C300")
	require.NoError(t, err)
	assert.Equal(t, []string{employee.TagNew}, added.Tags)

	employeeCtx := asPrincipal(t, user.Principal{Role: user.RoleEmployee, EmployeeID: "C147"})
	_, err = svc.SyncBaseline(employeeCtx, nil)
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)
}
