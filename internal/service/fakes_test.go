package service

import (
	"context"
	"sync"

	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/models"
)

func testLogger() *logger.Logger { return logger.Get(logger.ErrorLevel) }

// ---- shared fakes for service tests ----

type broadcastCall struct {
	Type   string
	Fields map[string]any
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (f *fakeBroadcaster) Broadcast(msgType string, fields map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcastCall{Type: msgType, Fields: fields})
}

func (f *fakeBroadcaster) all() []broadcastCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]broadcastCall(nil), f.calls...)
}

func (f *fakeBroadcaster) byType(msgType string) []broadcastCall {
	var out []broadcastCall
	for _, c := range f.all() {
		if c.Type == msgType {
			out = append(out, c)
		}
	}
	return out
}

type fakeReadings struct {
	mu        sync.Mutex
	written   []models.SensorReading
	series    []models.DataPoint
	seriesErr error

	lastField  string
	lastStart  string
	lastStop   string
	lastWindow string
}

func (f *fakeReadings) Write(r models.SensorReading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, r)
}

func (f *fakeReadings) Series(_ context.Context, field, start, stop, window string) ([]models.DataPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastField, f.lastStart, f.lastStop, f.lastWindow = field, start, stop, window
	if f.seriesErr != nil {
		return nil, f.seriesErr
	}
	return f.series, nil
}

type fakeAlerts struct {
	mu     sync.Mutex
	values []float64
}

func (f *fakeAlerts) Evaluate(co2 float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = append(f.values, co2)
}

type fakeUsersRepo struct {
	createID   int
	createErr  error
	getUser    *models.User
	getErr     error
	recipients []models.User
	listErr    error

	lastCreated models.User
	listCalls   int
}

func (f *fakeUsersRepo) Create(_ context.Context, u models.User) (int, error) {
	f.lastCreated = u
	return f.createID, f.createErr
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, _ string) (*models.User, error) {
	return f.getUser, f.getErr
}

func (f *fakeUsersRepo) ListRecipients(_ context.Context) ([]models.User, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.recipients, nil
}

type sentMail struct {
	To   string
	Name string
	PPM  float64
}

// fakeNotifier signals every delivery on a channel so tests can wait on
// asynchronous sends without sleeping.
type fakeNotifier struct {
	alertErr error
	sent     chan sentMail
	welcomes chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		sent:     make(chan sentMail, 16),
		welcomes: make(chan string, 16),
	}
}

func (f *fakeNotifier) SendCO2Alert(to, name string, ppm float64) error {
	if f.alertErr != nil {
		return f.alertErr
	}
	f.sent <- sentMail{To: to, Name: name, PPM: ppm}
	return nil
}

func (f *fakeNotifier) SendWelcome(to, _, _ string) error {
	f.welcomes <- to
	return nil
}
