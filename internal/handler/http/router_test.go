package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-normalizer/internal/repository/memory"
	authService "github.com/cmlabs-hris/attendance-normalizer/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-normalizer/internal/service/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/service/file"
	ingestService "github.com/cmlabs-hris/attendance-normalizer/internal/service/ingest"
	reportService "github.com/cmlabs-hris/attendance-normalizer/internal/service/report"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	router     *chi.Mux
	store      *memory.EmployeeStore
	jwtService jwt.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewEmployeeStore(
		employee.Employee{
			ID: "C147", Name: "VISHAL SINGH", Department: "CAE", Company: "Copes Tech",
			ComplianceScore: 100,
			MonthlyData: map[string][]employee.DayRecord{
				"2026-01": {
					{Date: "04-01-2026", Day: 4, Status: employee.StatusPresent, IsCycleImperfect: true, Cycles: []employee.PunchPair{{In: "10:00"}}},
				},
			},
		},
		employee.Employee{
			ID: "C150", Name: "PRIYA SHARMA", Department: "QA", ComplianceScore: 100,
			MonthlyData: map[string][]employee.DayRecord{},
		},
	)

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	accounts := []authService.Account{
		{Username: "HR", Role: user.RoleAdmin, PasswordHash: string(hash)},
	}

	hub := sse.NewHub()
	employeeSvc := employeeService.NewEmployeeService(store, store, nil)
	ingestSvc := ingestService.NewIngestService(store, store, file.NewFileService(local), hub, nil, ingestService.MergeOptions{})
	reportSvc := reportService.NewReportService(store)
	authSvc := authService.NewAuthService(jwtService, store, accounts)

	router := NewRouter(
		jwtService,
		NewAuthHandler(authSvc),
		NewUploadHandler(ingestSvc),
		NewEmployeeHandler(employeeSvc),
		NewNotificationHandler(reportSvc, employeeSvc, hub),
		NewReportHandler(reportSvc),
		RouterOptions{Env: "test"},
	)

	return &testServer{router: router, store: store, jwtService: jwtService}
}

func (s *testServer) token(t *testing.T, p user.Principal) string {
	t.Helper()
	token, _, err := s.jwtService.GenerateAccessToken(p)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body []byte, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	return s.do(t, method, path, token, body, "application/json")
}

func multipartBody(t *testing.T, files map[string][]byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

var (
	adminPrincipal    = user.Principal{Username: "HR", Role: user.RoleAdmin}
	employeePrincipal = user.Principal{Username: "VISHAL SINGH", Role: user.RoleEmployee, EmployeeID: "C147"}
)

func TestLoginThenMe(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "hr", "password": "1234"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokenResp))
	assert.Equal(t, "ADMIN", tokenResp.Role)
	require.NotEmpty(t, tokenResp.AccessToken)

	rec, env = s.doJSON(t, http.MethodGet, "/api/v1/auth/me", tokenResp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"HR","role":"ADMIN"}`, string(env.Data))
}

func TestLoginEmployeeByNameAndCode(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "vishal singh", "password": "c147"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokenResp struct {
		Role       string `json:"role"`
		EmployeeID string `json:"employee_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokenResp))
	assert.Equal(t, "EMPLOYEE", tokenResp.Role)
	assert.Equal(t, "C147", tokenResp.EmployeeID)
}

func TestLoginRejectsBadPayloads(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", "", []byte("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "username")

	rec, _ = s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "HR", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, adminPrincipal)

	rec, _ := s.doJSON(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/employees", "/api/v1/notifications", "/api/v1/reports/summary", "/api/v1/templates/attendance"} {
		rec, _ := s.doJSON(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestEmployeeListIsScopedForEmployees(t *testing.T) {
	s := newTestServer(t)

	var list employee.ListEmployeeResponse

	rec, env := s.doJSON(t, http.MethodGet, "/api/v1/employees?page=1&limit=10", s.token(t, adminPrincipal), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Employees, 2)

	rec, env = s.doJSON(t, http.MethodGet, "/api/v1/employees?department=qa", s.token(t, adminPrincipal), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Employees, 1)
	assert.Equal(t, "C150", list.Employees[0].ID)

	rec, env = s.doJSON(t, http.MethodGet, "/api/v1/employees", s.token(t, employeePrincipal), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Employees, 1)
	assert.Equal(t, "C147", list.Employees[0].ID)

	rec, _ = s.doJSON(t, http.MethodGet, "/api/v1/employees/C150", s.token(t, employeePrincipal), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEmployeeWriteRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, adminPrincipal)

	t.Run("employees cannot write", func(t *testing.T) {
		rec, _ := s.doJSON(t, http.MethodPut, "/api/v1/employees/C147", s.token(t, employeePrincipal), map[string]string{"name": "X"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("create allocates the next identifier", func(t *testing.T) {
		rec, env := s.doJSON(t, http.MethodPost, "/api/v1/employees", admin, map[string]string{"name": "New Hire", "id": "IGNORED"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created employee.Employee
		require.NoError(t, json.Unmarshal(env.Data, &created))
		assert.Equal(t, "C151", created.ID)
	})

	t.Run("update takes the identifier from the path", func(t *testing.T) {
		rec, env := s.doJSON(t, http.MethodPut, "/api/v1/employees/c150", admin, map[string]string{"name": "Priya S", "department": "Design"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var saved employee.Employee
		require.NoError(t, json.Unmarshal(env.Data, &saved))
		assert.Equal(t, "C150", saved.ID)
		assert.Equal(t, "Design", saved.Department)
	})

	t.Run("missing name is a validation error", func(t *testing.T) {
		rec, _ := s.doJSON(t, http.MethodPut, "/api/v1/employees/C150", admin, map[string]string{})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("delete then get", func(t *testing.T) {
		rec, _ := s.doJSON(t, http.MethodDelete, "/api/v1/employees/C150", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = s.doJSON(t, http.MethodGet, "/api/v1/employees/C150", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = s.doJSON(t, http.MethodDelete, "/api/v1/employees/C150", admin, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUploadAttendanceBatch(t *testing.T) {
	s := newTestServer(t)

	workbook, err := sheet.Write("Attendance", []string{"Emp Code", "Emp Name", "Date", "In Time", "Out Time", "Status"}, [][]any{
		{"c147", "VISHAL SINGH", "02-01-2026", "10:14", "20:12", "Present"},
	})
	require.NoError(t, err)
	body, contentType := multipartBody(t, map[string][]byte{"jan.xlsx": workbook})

	rec, _ := s.do(t, http.MethodPost, "/api/v1/uploads/attendance", s.token(t, employeePrincipal), body, contentType)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(t, http.MethodPost, "/api/v1/uploads/attendance", s.token(t, adminPrincipal), body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		FilesProcessed   int `json:"files_processed"`
		EmployeesTouched int `json:"employees_touched"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.EmployeesTouched)

	emp, err := s.store.GetByID(t.Context(), "C147")
	require.NoError(t, err)
	var stayed int
	for _, d := range emp.MonthlyData["2026-01"] {
		if d.Day == 2 {
			stayed = d.TotalStayedInMinutes
		}
	}
	assert.Equal(t, 598, stayed)
}

func TestUploadRejectsBadBatches(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, adminPrincipal)

	t.Run("unsupported file type", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{"jan.csv": []byte("a,b")})
		rec, _ := s.do(t, http.MethodPost, "/api/v1/uploads/attendance", admin, body, contentType)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{"jan.xlsx": []byte("x")})
		rec, _ := s.do(t, http.MethodPost, "/api/v1/uploads/payroll", admin, body, contentType)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("undecodable workbook", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string][]byte{"jan.xlsx": []byte("not a workbook")})
		rec, env := s.do(t, http.MethodPost, "/api/v1/uploads/attendance", admin, body, contentType)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "Processing failed, verify column headers", env.Error.Message)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec, _ := s.doJSON(t, http.MethodPost, "/api/v1/uploads/attendance", admin, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotificationsReadFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, employeePrincipal)

	var list struct {
		Total         int                     `json:"total"`
		Notifications []employee.Notification `json:"notifications"`
	}

	rec, env := s.doJSON(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Total)
	key := list.Notifications[0].Key
	assert.Equal(t, "C147-04-01-2026", key)

	rec, _ = s.doJSON(t, http.MethodPost, "/api/v1/notifications/read", token, map[string]string{"employee_id": "C147", "key": "C147-05-01-2026"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = s.doJSON(t, http.MethodPost, "/api/v1/notifications/read", token, map[string]string{"employee_id": "C147", "key": key})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.doJSON(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Zero(t, list.Total)

	rec, env = s.doJSON(t, http.MethodPost, "/api/v1/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"marked":0}`, string(env.Data))
}

func TestReportDownloads(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.doJSON(t, http.MethodGet, "/api/v1/reports/export", s.token(t, employeePrincipal), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.doJSON(t, http.MethodGet, "/api/v1/reports/export", s.token(t, adminPrincipal), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Attendance_Export_")

	rows, err := sheet.DecodeBytes(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	for _, path := range []string{"/api/v1/templates/attendance", "/api/v1/templates/personnel"} {
		rec, _ = s.doJSON(t, http.MethodGet, path, s.token(t, employeePrincipal), nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	}
}

func TestReportAnalyticsAndSummary(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, adminPrincipal)

	rec, _ := s.doJSON(t, http.MethodGet, "/api/v1/reports/analytics?month=2026-13", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env := s.doJSON(t, http.MethodGet, "/api/v1/reports/analytics?month=2026-01", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var analytics struct {
		Month         string `json:"month"`
		EmployeeCount int    `json:"employee_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &analytics))
	assert.Equal(t, "2026-01", analytics.Month)

	rec, _ = s.doJSON(t, http.MethodGet, "/api/v1/reports/summary", s.token(t, employeePrincipal), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func readEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestNotificationStream(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(srv.URL + "/api/v1/notifications/stream")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/api/v1/notifications/stream?token=" + s.token(t, employeePrincipal))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, data := readEvent(t, reader)
	assert.Equal(t, "connected", event)
	assert.JSONEq(t, `{"audience":"C147","pending_notifications":1}`, data)

	workbook, err := sheet.Write("Attendance", []string{"Emp Code", "Emp Name", "Date", "In Time", "Out Time"}, [][]any{
		{"C147", "VISHAL SINGH", "05-01-2026", "09:00", "17:00"},
		{"C150", "PRIYA SHARMA", "05-01-2026", "09:00", "17:00"},
	})
	require.NoError(t, err)
	body, contentType := multipartBody(t, map[string][]byte{"jan.xlsx": workbook})
	rec, _ := s.do(t, http.MethodPost, "/api/v1/uploads/attendance", s.token(t, adminPrincipal), body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	event, data = readEvent(t, reader)
	assert.Equal(t, "attendance.updated", event)

	var payload struct {
		EmployeeIDs          []string `json:"employee_ids"`
		PendingNotifications int      `json:"pending_notifications"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, []string{"C147"}, payload.EmployeeIDs)
	assert.Equal(t, 1, payload.PendingNotifications)
}
