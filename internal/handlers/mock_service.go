package handlers

import (
	"context"
	"net/http"

	"ventilation_dashboard/internal/models"
	"ventilation_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUp      service.SignUpParams
	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) SignUp(_ context.Context, p service.SignUpParams) (int, error) {
	m.lastSignUp = p
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	setFanErr        error
	setModeErr       error
	setThresholdsErr error

	lastFanOn      bool
	lastMode       string
	lastCO2        float64
	lastTemp       float64
	setFanCalls    int
	setModeCalls   int
	setThreshCalls int
}

func (m *mockControl) SetFan(_ context.Context, on bool) error {
	m.setFanCalls++
	m.lastFanOn = on
	return m.setFanErr
}
func (m *mockControl) SetMode(_ context.Context, mode string) error {
	m.setModeCalls++
	m.lastMode = mode
	return m.setModeErr
}
func (m *mockControl) SetThresholds(_ context.Context, co2, temperature float64) error {
	m.setThreshCalls++
	m.lastCO2, m.lastTemp = co2, temperature
	return m.setThresholdsErr
}

type mockMonitoring struct {
	state models.DeviceState
}

func (m *mockMonitoring) State() models.DeviceState {
	return m.state
}

type mockHistory struct {
	queryRes  service.QueryResult
	queryErr  error
	seriesRes service.SensorSeries
	seriesErr error

	lastQuery  service.QueryParams
	lastMetric string
}

func (m *mockHistory) Query(_ context.Context, p service.QueryParams) (service.QueryResult, error) {
	m.lastQuery = p
	return m.queryRes, m.queryErr
}
func (m *mockHistory) SensorSeries(_ context.Context, metric string) (service.SensorSeries, error) {
	m.lastMetric = metric
	return m.seriesRes, m.seriesErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
