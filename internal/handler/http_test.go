package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moral-game-server/internal/handler"
	"moral-game-server/internal/metrics"
	"moral-game-server/internal/model"
	"moral-game-server/internal/service"
	"moral-game-server/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCompletionClient struct {
	mock.Mock
}

func (m *mockCompletionClient) ChatCompletion(ctx context.Context, messages []model.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

const validReply = `{"story": "The gates open.", "choices": ["Help", "Watch", "Take", "Burn"]}`

// newTestServer собирает echo с реальным сервисом поверх мока клиента.
func newTestServer(t *testing.T) (*echo.Echo, *mockCompletionClient, *session.Store) {
	t.Helper()
	client := new(mockCompletionClient)
	store := session.NewStore(nil)
	m := metrics.New()
	svc := service.NewGameService(client, store, m, zap.NewNop(), service.ModeMoral, 0)
	h := handler.NewGameHandler(svc, zap.NewNop(), m.Registry)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, client, store
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	return data
}

func TestStartEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		client.On("ChatCompletion", mock.Anything, mock.Anything).Return(validReply, nil).Once()

		rec := doRequest(e, http.MethodGet, "/start", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		data := decode(t, rec)
		assert.NotEmpty(t, data["session_id"])
		assert.Equal(t, "The gates open.", data["story"])
		assert.Len(t, data["choices"], 4)
	})

	t.Run("Fallback has no session_id", func(t *testing.T) {
		e, client, store := newTestServer(t)
		client.On("ChatCompletion", mock.Anything, mock.Anything).
			Return("", errors.New("unreachable")).Once()

		rec := doRequest(e, http.MethodGet, "/start", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		data := decode(t, rec)
		_, hasID := data["session_id"]
		assert.False(t, hasID)
		assert.NotEmpty(t, data["story"])
		assert.Equal(t, 0, store.Len())
	})
}

func TestChoiceEndpoint(t *testing.T) {
	startGame := func(t *testing.T, e *echo.Echo, client *mockCompletionClient) string {
		t.Helper()
		client.On("ChatCompletion", mock.Anything, mock.Anything).Return(validReply, nil).Once()
		rec := doRequest(e, http.MethodGet, "/start", "")
		require.Equal(t, http.StatusOK, rec.Code)
		return decode(t, rec)["session_id"].(string)
	}

	t.Run("Success with alignment", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		id := startGame(t, e, client)

		client.On("ChatCompletion", mock.Anything, mock.Anything).Return(validReply, nil).Once()
		rec := doRequest(e, http.MethodPost, "/choice", `{"session_id": "`+id+`", "choice": 1}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		data := decode(t, rec)
		assert.Equal(t, id, data["session_id"])
		assert.Equal(t, "mostly_good", data["moral_alignment"])
	})

	t.Run("Missing fields", func(t *testing.T) {
		e, _, _ := newTestServer(t)

		rec := doRequest(e, http.MethodPost, "/choice", `{"session_id": "x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "Missing choice or session_id")

		rec = doRequest(e, http.MethodPost, "/choice", `{"choice": 1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Invalid choice number", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		id := startGame(t, e, client)

		for _, body := range []string{
			`{"session_id": "` + id + `", "choice": 0}`,
			`{"session_id": "` + id + `", "choice": 5}`,
		} {
			rec := doRequest(e, http.MethodPost, "/choice", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec)["error"], "invalid choice")
		}
		// Только стартовый вызов дошел до модели
		client.AssertNumberOfCalls(t, "ChatCompletion", 1)
	})

	t.Run("Unknown session", func(t *testing.T) {
		e, _, _ := newTestServer(t)

		rec := doRequest(e, http.MethodPost, "/choice", `{"session_id": "game_7_missing0", "choice": 1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "invalid or expired session")
	})

	t.Run("Parse failure returns error with fallback payload", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		id := startGame(t, e, client)

		client.On("ChatCompletion", mock.Anything, mock.Anything).
			Return("no structure whatsoever", nil).Once()
		rec := doRequest(e, http.MethodPost, "/choice", `{"session_id": "`+id+`", "choice": 2}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		data := decode(t, rec)
		assert.Contains(t, data["error"], "failed to parse")
		assert.NotEmpty(t, data["story"])
		assert.NotEmpty(t, data["choices"])
	})

	t.Run("Transport failure returns plain error", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		id := startGame(t, e, client)

		client.On("ChatCompletion", mock.Anything, mock.Anything).
			Return("", errors.New("timeout")).Once()
		rec := doRequest(e, http.MethodPost, "/choice", `{"session_id": "`+id+`", "choice": 2}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		data := decode(t, rec)
		assert.Contains(t, data["error"], "failed to generate")
		_, hasStory := data["story"]
		assert.False(t, hasStory)
	})
}

func TestEndEndpoint(t *testing.T) {
	e, client, store := newTestServer(t)
	client.On("ChatCompletion", mock.Anything, mock.Anything).Return(validReply, nil).Once()
	rec := doRequest(e, http.MethodGet, "/start", "")
	id := decode(t, rec)["session_id"].(string)

	rec = doRequest(e, http.MethodPost, "/end", `{"session_id": "`+id+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Game ended successfully", decode(t, rec)["message"])
	assert.Equal(t, 0, store.Len())

	// Повторное завершение
	rec = doRequest(e, http.MethodPost, "/end", `{"session_id": "`+id+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Отсутствует session_id
	rec = doRequest(e, http.MethodPost, "/end", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeEndpoint(t *testing.T) {
	t.Run("Missing story", func(t *testing.T) {
		e, _, _ := newTestServer(t)
		rec := doRequest(e, http.MethodPost, "/summarize", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Always 200 on model failure", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		client.On("ChatCompletion", mock.Anything, mock.Anything).
			Return("", errors.New("down")).Once()

		rec := doRequest(e, http.MethodPost, "/summarize", `{"story": "S", "choice": "C"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, decode(t, rec)["summary"], "C")
	})

	t.Run("Success", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		client.On("ChatCompletion", mock.Anything, mock.Anything).
			Return(`{"summary": "Brief and bright."}`, nil).Once()

		rec := doRequest(e, http.MethodPost, "/summarize", `{"story": "S"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Brief and bright.", decode(t, rec)["summary"])
	})
}

func TestMoralChoiceEndpoint(t *testing.T) {
	t.Run("Missing story_context", func(t *testing.T) {
		e, _, _ := newTestServer(t)
		rec := doRequest(e, http.MethodPost, "/moral_choice", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Always 200 with four choices", func(t *testing.T) {
		e, client, _ := newTestServer(t)
		client.On("ChatCompletion", mock.Anything, mock.Anything).
			Return("", errors.New("down")).Once()

		rec := doRequest(e, http.MethodPost, "/moral_choice", `{"story_context": "ctx"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["choices"], 4)
	})
}

func TestHealthEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doRequest(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doRequest(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
