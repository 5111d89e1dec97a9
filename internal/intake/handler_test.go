package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// stubService lets each handler test script the outcome per method.
type stubService struct {
	start   func(StartRequest) (Response, error)
	turn    func(TurnRequest) (Response, error)
	get     func(string) (*Session, error)
	abandon func(string) error
}

func (s *stubService) StartSession(_ context.Context, req StartRequest) (Response, error) {
	return s.start(req)
}

func (s *stubService) ProcessTurn(_ context.Context, req TurnRequest) (Response, error) {
	return s.turn(req)
}

func (s *stubService) GetSession(_ context.Context, id string) (*Session, error) {
	return s.get(id)
}

func (s *stubService) AbandonSession(_ context.Context, id string) error {
	return s.abandon(id)
}

func newHandlerRouter(service Service) *chi.Mux {
	h := NewHandler(service, nil)
	r := chi.NewRouter()
	r.Post("/sessions/start", h.Start)
	r.Post("/sessions/turn", h.Turn)
	r.Get("/sessions/{sessionID}", h.Get)
	r.Post("/sessions/{sessionID}/abandon", h.Abandon)
	return r
}

func TestHandler_Start(t *testing.T) {
	service := &stubService{
		start: func(req StartRequest) (Response, error) {
			if req.OwnerID != "owner-1" {
				t.Fatalf("owner not decoded: %+v", req)
			}
			return Response{SessionID: "s1", Message: "hello", Status: StatusActive, CurrentField: FieldCustomerName}, nil
		},
	}
	router := newHandlerRouter(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/start", strings.NewReader(`{"ownerId":"owner-1"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "s1" || resp.Message != "hello" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandler_StartRequiresOwner(t *testing.T) {
	service := &stubService{
		start: func(StartRequest) (Response, error) { return Response{}, ErrOwnerRequired },
	}
	router := newHandlerRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/start", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_StartRejectsBadJSON(t *testing.T) {
	router := newHandlerRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/start", strings.NewReader(`{not json`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_Turn(t *testing.T) {
	service := &stubService{
		turn: func(req TurnRequest) (Response, error) {
			if req.SessionID != "s1" || req.Input != "Jane Doe" || req.AttachmentID != "att-1" {
				t.Fatalf("turn not decoded: %+v", req)
			}
			return Response{SessionID: "s1", Message: "And your email?", Status: StatusActive}, nil
		},
	}
	router := newHandlerRouter(service)

	rec := httptest.NewRecorder()
	body := `{"sessionId":"s1","input":"Jane Doe","attachmentId":"att-1"}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/turn", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_TurnRequiresSessionID(t *testing.T) {
	router := newHandlerRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/turn", strings.NewReader(`{"input":"hi"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_TurnErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrSessionNotFound, http.StatusNotFound},
		{"inactive", ErrSessionInactive, http.StatusConflict},
		{"expired", ErrSessionExpired, http.StatusGone},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubService{
				turn: func(TurnRequest) (Response, error) { return Response{}, tt.err },
			}
			router := newHandlerRouter(service)

			rec := httptest.NewRecorder()
			body := `{"sessionId":"s1","input":"hi"}`
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/turn", strings.NewReader(body)))

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHandler_Get(t *testing.T) {
	service := &stubService{
		get: func(id string) (*Session, error) {
			if id != "s1" {
				t.Fatalf("wrong session id: %s", id)
			}
			return &Session{ID: "s1", Status: StatusActive}, nil
		},
	}
	router := newHandlerRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/s1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var session Session
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID != "s1" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	service := &stubService{
		get: func(string) (*Session, error) { return nil, ErrSessionNotFound },
	}
	router := newHandlerRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_Abandon(t *testing.T) {
	var abandoned string
	service := &stubService{
		abandon: func(id string) error {
			abandoned = id
			return nil
		},
	}
	router := newHandlerRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/s1/abandon", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if abandoned != "s1" {
		t.Fatalf("wrong session abandoned: %q", abandoned)
	}
}
