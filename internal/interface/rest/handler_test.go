package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/omunroe-com/shiftspace"
	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

// --- mocks ---

type memShiftRepo struct {
	mu   sync.Mutex
	docs map[domain.StoreID]map[string]*domain.Shift
}

func (m *memShiftRepo) Load(ctx context.Context, store domain.StoreID, id string) (*domain.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.docs[store][id]; ok {
		return s.Clone(), nil
	}
	return nil, domain.NotFoundError{Resource: "shift"}
}

func (m *memShiftRepo) LoadMany(ctx context.Context, store domain.StoreID, ids []string) ([]*domain.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Shift{}
	for _, id := range ids {
		if s, ok := m.docs[store][id]; ok {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (m *memShiftRepo) Exists(ctx context.Context, store domain.StoreID, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		_, out[id] = m.docs[store][id]
	}
	return out, nil
}

func (m *memShiftRepo) Store(ctx context.Context, store domain.StoreID, shift *domain.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[store] == nil {
		m.docs[store] = map[string]*domain.Shift{}
	}
	m.docs[store][shift.ID] = shift.Clone()
	return nil
}

func (m *memShiftRepo) Delete(ctx context.Context, store domain.StoreID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[store][id]; !ok {
		return domain.NotFoundError{Resource: "shift"}
	}
	delete(m.docs[store], id)
	return nil
}

type nopReplicator struct{}

func (nopReplicator) Request(ctx context.Context, source, target domain.StoreID) error { return nil }

type nopGroups struct{}

func (nopGroups) AddShift(ctx context.Context, groupID string, shift *domain.Shift) error {
	return nil
}
func (nopGroups) UpdateShift(ctx context.Context, groupID string, shift *domain.Shift) error {
	return nil
}

type staticActors struct {
	writable []string
}

func (a staticActors) Followers(ctx context.Context, actorID string) ([]string, error) {
	return nil, nil
}
func (a staticActors) WritableGroups(ctx context.Context, actorID string) ([]string, error) {
	return a.writable, nil
}
func (a staticActors) Profiles(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	return map[string]domain.Profile{}, nil
}

type emptyCounts struct{}

func (emptyCounts) Exists(ctx context.Context, actorID string, ids []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (emptyCounts) CountByShift(ctx context.Context, ids []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}
func (emptyCounts) DeleteThread(ctx context.Context, id string) error { return nil }

type staticSearch struct {
	repo *memShiftRepo
}

func (s staticSearch) Search(ctx context.Context, query string, start, limit int) ([]string, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	ids := []string{}
	for id := range s.repo.docs[domain.GlobalShared] {
		ids = append(ids, id)
	}
	return ids, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(ctx context.Context, event domain.ShiftEvent) error { return nil }

func newTestServer() *echo.Echo {
	repo := &memShiftRepo{docs: map[domain.StoreID]map[string]*domain.Shift{}}
	logger := zap.NewNop()
	engine := usecase.NewReplicationEngine(repo, nopReplicator{}, usecase.DefaultReplicationOptions())
	join := usecase.NewJoinAggregator(emptyCounts{}, emptyCounts{}, staticActors{})
	actors := staticActors{writable: []string{"g1"}}
	publisher := usecase.NewPublisher(engine, nopGroups{}, actors, join, logger, 2)
	uc := usecase.NewShiftUsecase(repo, engine, publisher, join, nopGroups{}, emptyCounts{}, staticSearch{repo: repo}, nopNotifier{}, logger, 2)

	e := echo.New()
	NewHandler(uc).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, path, requester string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if requester != "" {
		req.Header.Set(domain.RequesterIdHeader, requester)
	}
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

func createViaAPI(t *testing.T, e *echo.Echo, requester string) domain.Shift {
	t.Helper()
	res := do(e, http.MethodPost, "/shifts", requester, shiftspace.ShiftRequest{
		Href:    "http://example.com/a",
		Space:   shiftspace.Space{Name: "notes", Version: "0.1"},
		Content: map[string]any{"text": "hi"},
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}
	var s domain.Shift
	if err := json.Unmarshal(res.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return s
}

// --- tests ---

func TestCreateAndRead(t *testing.T) {
	e := newTestServer()
	s := createViaAPI(t, e, "u1")

	res := do(e, http.MethodGet, "/shifts/"+s.ID, "u1", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	res = do(e, http.MethodGet, "/shifts/"+s.ID, "u2", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user, got %d", res.Code)
	}
}

func TestCreateWithoutRequester(t *testing.T) {
	e := newTestServer()
	res := do(e, http.MethodPost, "/shifts", "", shiftspace.ShiftRequest{Href: "http://x", Content: map[string]any{}})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestCreateWithoutSpace(t *testing.T) {
	e := newTestServer()
	res := do(e, http.MethodPost, "/shifts", "u1", shiftspace.ShiftRequest{Href: "http://x", Content: map[string]any{}})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestPublishMalformedDestination(t *testing.T) {
	e := newTestServer()
	s := createViaAPI(t, e, "u1")

	res := do(e, http.MethodPost, "/shifts/"+s.ID+"/publish", "u1", echo.Map{"dbs": []string{"user/u2", "bogus"}})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestPublishReportsDroppedGroups(t *testing.T) {
	e := newTestServer()
	s := createViaAPI(t, e, "u1")

	res := do(e, http.MethodPost, "/shifts/"+s.ID+"/publish", "u1", echo.Map{
		"private": true,
		"dbs":     []string{"group/g1", "group/g2", "user/u2"},
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var body struct {
		Shift    domain.Shift                 `json:"shift"`
		Dropped  []shiftspace.DroppedTarget   `json:"dropped"`
		Failures []shiftspace.FailureResponse `json:"failures"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Dropped) != 1 || body.Dropped[0].Destination != "group/g2" || body.Dropped[0].Reason != "unauthorized" {
		t.Fatalf("unexpected dropped %+v", body.Dropped)
	}
	if len(body.Shift.PublishData.Dbs) != 2 || body.Shift.PublishData.Draft {
		t.Fatalf("unexpected publish data %+v", body.Shift.PublishData)
	}
	if len(body.Failures) != 0 {
		t.Fatalf("unexpected failures %+v", body.Failures)
	}
}

func TestUnpublishNotImplemented(t *testing.T) {
	e := newTestServer()
	s := createViaAPI(t, e, "u1")

	res := do(e, http.MethodPost, "/shifts/"+s.ID+"/unpublish", "u1", nil)
	if res.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 got %d", res.Code)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	e := newTestServer()
	s := createViaAPI(t, e, "u1")

	res := do(e, http.MethodPut, "/shifts/"+s.ID, "u1", echo.Map{"summary": "changed"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}

	res = do(e, http.MethodPut, "/shifts/"+s.ID, "u2", echo.Map{"summary": "nope"})
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", res.Code)
	}

	res = do(e, http.MethodDelete, "/shifts/"+s.ID, "u1", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	res = do(e, http.MethodDelete, "/shifts/"+s.ID, "u1", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", res.Code)
	}
}

func TestList(t *testing.T) {
	e := newTestServer()
	s := createViaAPI(t, e, "u1")
	res := do(e, http.MethodPost, "/shifts/"+s.ID+"/publish", "u1", echo.Map{"private": false})
	if res.Code != http.StatusOK {
		t.Fatalf("publish failed: %d %s", res.Code, res.Body.String())
	}

	res = do(e, http.MethodGet, "/shifts?href=http://example.com/a&limit=5", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	var shifts []domain.Shift
	if err := json.Unmarshal(res.Body.Bytes(), &shifts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(shifts) != 1 || shifts[0].ID != s.ID {
		t.Fatalf("unexpected list %+v", shifts)
	}

	res = do(e, http.MethodGet, "/shifts?href=x&limit=abc", "", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", res.Code)
	}
	res = do(e, http.MethodGet, "/shifts", "", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without href, got %d", res.Code)
	}
}
