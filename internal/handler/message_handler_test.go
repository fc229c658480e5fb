package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"echohub/internal/app/message"
	"echohub/internal/configs"
	"echohub/internal/pkg/auth/jwt"
	"echohub/internal/pkg/errs"
	"echohub/internal/pkg/resp"
)

const testSecret = "test-secret"

// fakeMessageStore serves a canned history and records failures to inject.
type fakeMessageStore struct {
	messages []message.Message
	rangeErr error
}

func (f *fakeMessageStore) Append(_ context.Context, fromID, toID int64, text string) (message.Message, error) {
	msg := message.Message{
		ID:         int64(len(f.messages) + 1),
		FromUserID: fromID,
		ToUserID:   toID,
		Text:       text,
		Timestamp:  time.Now(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeMessageStore) Range(_ context.Context, userA, userB int64) ([]message.Message, error) {
	if f.rangeErr != nil {
		return nil, f.rangeErr
	}
	return f.messages, nil
}

func startMessageTestServer(t *testing.T, store *fakeMessageStore) *httptest.Server {
	t.Helper()

	deps := &AppDeps{
		Config:   &configs.AppConfig{JWTSecret: testSecret},
		Messages: store,
	}

	r := chi.NewRouter()
	r.Use(jwt.IdentityExtractorMiddleware(testSecret))
	r.Get("/api/messages/{contactUserId}", HandleGetMessages(deps))

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return ts
}

func authedGet(t *testing.T, ts *httptest.Server, path string, userID int64) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	if userID > 0 {
		token, err := jwt.GenerateToken(&jwt.Payload{UserID: userID, Username: "alice"}, testSecret, time.Hour)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	return res
}

func decodeResponse(t *testing.T, res *http.Response) resp.JSONResponse {
	t.Helper()
	defer res.Body.Close()

	var body resp.JSONResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("response body did not decode: %v", err)
	}

	return body
}

func TestGetMessagesRequiresAuth(t *testing.T) {
	ts := startMessageTestServer(t, &fakeMessageStore{})

	res := authedGet(t, ts, "/api/messages/12", 0)

	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}

	body := decodeResponse(t, res)
	if body.Code != errs.ErrUnauthorized {
		t.Fatalf("code = %d, want %d", body.Code, errs.ErrUnauthorized)
	}
}

func TestGetMessagesRejectsBadContactID(t *testing.T) {
	ts := startMessageTestServer(t, &fakeMessageStore{})

	for _, path := range []string{"/api/messages/abc", "/api/messages/-1"} {
		res := authedGet(t, ts, path, 7)

		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want %d", path, res.StatusCode, http.StatusBadRequest)
		}

		body := decodeResponse(t, res)
		if body.Code != errs.ErrInvalidContactID {
			t.Fatalf("%s: code = %d, want %d", path, body.Code, errs.ErrInvalidContactID)
		}
	}
}

func TestGetMessagesRejectsSelfConversation(t *testing.T) {
	ts := startMessageTestServer(t, &fakeMessageStore{})

	res := authedGet(t, ts, "/api/messages/7", 7)

	body := decodeResponse(t, res)
	if body.Code != errs.ErrSelfConversation {
		t.Fatalf("code = %d, want %d", body.Code, errs.ErrSelfConversation)
	}
}

func TestGetMessagesReturnsHistory(t *testing.T) {
	store := &fakeMessageStore{}
	if _, err := store.Append(context.Background(), 7, 12, "hello"); err != nil {
		t.Fatalf("seeding store failed: %v", err)
	}
	if _, err := store.Append(context.Background(), 12, 7, "hi back"); err != nil {
		t.Fatalf("seeding store failed: %v", err)
	}

	ts := startMessageTestServer(t, store)

	res := authedGet(t, ts, "/api/messages/12", 7)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	body := decodeResponse(t, res)
	if body.Code != 0 {
		t.Fatalf("code = %d, want 0", body.Code)
	}

	data, ok := body.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", body.Data)
	}
	messages, ok := data["messages"].([]any)
	if !ok {
		t.Fatalf("messages field is %T, want array", data["messages"])
	}
	if len(messages) != 2 {
		t.Fatalf("history has %d messages, want 2", len(messages))
	}
}

func TestGetMessagesFetchFailure(t *testing.T) {
	ts := startMessageTestServer(t, &fakeMessageStore{rangeErr: errors.New("db down")})

	res := authedGet(t, ts, "/api/messages/12", 7)

	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusInternalServerError)
	}

	body := decodeResponse(t, res)
	if body.Code != errs.ErrMessageFetchFailed {
		t.Fatalf("code = %d, want %d", body.Code, errs.ErrMessageFetchFailed)
	}
}
