package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"echohub/internal/app/chat"
	"echohub/internal/configs"
	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/errs"
	"echohub/internal/pkg/limiter"
	"echohub/internal/pkg/resp"
)

func startWsTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	deps := &AppDeps{
		Hub:      chat.NewHub(&fakeMessageStore{}, nil),
		Config:   &configs.AppConfig{JWTSecret: testSecret, Environment: "development"},
		Verifier: jwt.Verifier{SecretKey: testSecret},
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(100), 100)

	ts := httptest.NewServer(HandleWebSocket(upgrader, connectLimiter, deps))
	t.Cleanup(ts.Close)

	return ts
}

func TestWebSocketHandshakeRejectsMissingToken(t *testing.T) {
	ts := startWsTestServer(t)

	res, err := ts.Client().Get(ts.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}

	var body resp.JSONResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("response body did not decode: %v", err)
	}
	if body.Code != errs.ErrUnauthorized {
		t.Fatalf("code = %d, want %d", body.Code, errs.ErrUnauthorized)
	}
}

func TestWebSocketHandshakeRejectsInvalidToken(t *testing.T) {
	ts := startWsTestServer(t)

	res, err := ts.Client().Get(ts.URL + "?token=not-a-token")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}
}

func TestWebSocketHandshakeAcceptsValidToken(t *testing.T) {
	ts := startWsTestServer(t)

	token, err := jwt.GenerateToken(&jwt.Payload{UserID: 7, Username: "alice"}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	wsURL := "ws" + ts.URL[len("http"):] + "?token=" + token

	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v (response: %+v)", err, res)
	}
	defer conn.Close()

	if res.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSwitchingProtocols)
	}
}
