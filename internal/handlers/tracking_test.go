package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reintausend/rfs/internal/models"
)

const validEvent = `{
	"timestamp": 1760877000000,
	"date": "2026-10-19",
	"sessionId": "sess-42",
	"round": 3,
	"optionA_id": "S1",
	"optionA_textDE": "Szenario eins",
	"optionB_id": "S2",
	"optionB_textDE": "Szenario zwei",
	"chosen": "B",
	"chosenScenarioId": "S2",
	"language": "de"
}`

// MockTracker is a mock implementation of Recorder and TopScenarioSource.
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Record(ctx context.Context, req *models.ChoiceEventRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockTracker) TopScenarios(ctx context.Context) (*models.TopScenariosResponse, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TopScenariosResponse), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(m *MockTracker) *gin.Engine {
	r := gin.New()
	RegisterIngestRoutes(r, m, zap.NewNop())
	RegisterQueryRoutes(r, m, "RFS Tracking API", zap.NewNop())
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngest_Success(t *testing.T) {
	m := new(MockTracker)
	m.On("Record", mock.MatchedBy(func(req *models.ChoiceEventRequest) bool {
		return req.Timestamp == "1760877000000" &&
			req.Round == "3" &&
			req.ChosenScenarioID == "S2" &&
			req.TextB() == "Szenario zwei"
	})).Return(nil).Once()

	w := do(newRouter(m), http.MethodPost, "/", validEvent)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeJSON, w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	m.AssertExpectations(t)
}

func TestIngest_ExecAlias(t *testing.T) {
	m := new(MockTracker)
	m.On("Record", mock.Anything).Return(nil).Once()

	w := do(newRouter(m), http.MethodPost, "/exec", validEvent)

	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	m.AssertExpectations(t)
}

func TestIngest_InvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"timestamp":`, "invalid event"},
		{"not an object", `[1,2,3]`, "invalid event"},
		{"unknown field", strings.Replace(validEvent, `"language"`, `"extra": 1, "language"`, 1), "unknown field"},
		{"missing field", strings.Replace(validEvent, `"sessionId": "sess-42",`, "", 1), "SessionID"},
		{"trailing data", validEvent + `{}`, "unexpected data"},
		{"empty", ``, "invalid event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockTracker)

			w := do(newRouter(m), http.MethodPost, "/", tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.want)
			m.AssertNotCalled(t, "Record", mock.Anything)
		})
	}
}

func TestIngest_StoreFailure(t *testing.T) {
	m := new(MockTracker)
	m.On("Record", mock.Anything).Return(errors.New("store unavailable: boom"))

	w := do(newRouter(m), http.MethodPost, "/", validEvent)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"store unavailable: boom"}`, w.Body.String())
}

func TestIngest_IgnoresCallback(t *testing.T) {
	m := new(MockTracker)
	m.On("Record", mock.Anything).Return(nil)

	w := do(newRouter(m), http.MethodPost, "/?callback=cb", validEvent)

	assert.Equal(t, contentTypeJSON, w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestQuery_DefaultStatus(t *testing.T) {
	m := new(MockTracker)

	for _, target := range []string{"/", "/exec", "/?action=other"} {
		w := do(newRouter(m), http.MethodGet, target, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, contentTypeJSON, w.Header().Get("Content-Type"))
		assert.Equal(t, `{"status":"ok","message":"RFS Tracking API"}`, w.Body.String())
	}
	m.AssertNotCalled(t, "TopScenarios")
}

func TestQuery_GetTop(t *testing.T) {
	m := new(MockTracker)
	m.On("TopScenarios").Return(&models.TopScenariosResponse{
		Success:         true,
		Date:            "2026-10-19",
		TotalSelections: 3,
		TopScenarios: []models.ScenarioCount{
			{ScenarioID: "S1", Count: 2},
			{ScenarioID: "S2", Count: 1},
		},
	}, nil)

	w := do(newRouter(m), http.MethodGet, "/?action=getTop", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"date": "2026-10-19",
		"totalSelections": 3,
		"topScenarios": [
			{"scenarioId": "S1", "count": 2},
			{"scenarioId": "S2", "count": 1}
		]
	}`, w.Body.String())
}

func TestQuery_CallbackWrapsExactBody(t *testing.T) {
	m := new(MockTracker)
	m.On("TopScenarios").Return(&models.TopScenariosResponse{
		Success:      true,
		Date:         "2026-10-19",
		TopScenarios: []models.ScenarioCount{{ScenarioID: "<S&1>", Count: 1}},
	}, nil)
	r := newRouter(m)

	for _, q := range []string{"/?action=getTop", "/"} {
		plain := do(r, http.MethodGet, q, "")
		sep := "?"
		if strings.Contains(q, "?") {
			sep = "&"
		}
		wrapped := do(r, http.MethodGet, q+sep+"callback=foo", "")

		assert.Equal(t, contentTypeScript, wrapped.Header().Get("Content-Type"))
		assert.Equal(t, "foo("+plain.Body.String()+")", wrapped.Body.String())
	}
}

func TestQuery_FailureIsWrappedInCallback(t *testing.T) {
	m := new(MockTracker)
	m.On("TopScenarios").Return(nil, errors.New("store unavailable: read rows: timeout"))

	w := do(newRouter(m), http.MethodGet, "/?action=getTop&callback=app.onTop", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeScript, w.Header().Get("Content-Type"))
	assert.Equal(t,
		`app.onTop({"success":false,"error":"store unavailable: read rows: timeout"})`,
		w.Body.String())
}

func TestQuery_RejectsUnsafeCallback(t *testing.T) {
	m := new(MockTracker)

	w := do(newRouter(m), http.MethodGet, "/?action=getTop&callback=alert(1)//", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeJSON, w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"error":"invalid callback name"}`, w.Body.String())
	m.AssertNotCalled(t, "TopScenarios")
}

func TestCallbackPattern(t *testing.T) {
	for _, ok := range []string{"foo", "_cb", "$jsonp1", "app.handlers.onTop", "cb123"} {
		assert.True(t, callbackPattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"1cb", "foo bar", "a..b", "fn()", "x;alert(1)", "a."} {
		assert.False(t, callbackPattern.MatchString(bad), bad)
	}
}
