package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwise1/complaint_portal/config"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var _ Store = (*memStore)(nil)

type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]model.User
	categories []model.Category
	subs       []model.SubCategory
	complaints []model.Complaint
	votes      []model.Vote
	calls      map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]model.User{},
		categories: []model.Category{{ID: 1, Title: "Plumbing"}, {ID: 2, Title: "Electrical"}},
		subs: []model.SubCategory{
			{ID: 10, Title: "Leak", ParentCategoryID: 1},
			{ID: 11, Title: "Blockage", ParentCategoryID: 1},
			{ID: 20, Title: "Lighting", ParentCategoryID: 2},
		},
		calls: map[string]int{},
	}
}

func (s *memStore) called(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *memStore) record(name string) {
	s.calls[name]++
}

func (s *memStore) ListCategories(context.Context) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Category(nil), s.categories...), nil
}

func (s *memStore) ListSubCategories(_ context.Context, parentID int64) ([]model.SubCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.SubCategory{}
	for _, sc := range s.subs {
		if parentID == 0 || sc.ParentCategoryID == parentID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *memStore) GetCategory(_ context.Context, id int64) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Category{}, ErrCategoryNotFound
}

func (s *memStore) GetSubCategory(_ context.Context, id int64) (model.SubCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.subs {
		if sc.ID == id {
			return sc, nil
		}
	}
	return model.SubCategory{}, ErrSubCategoryNotFound
}

func (s *memStore) withVotes(c model.Complaint) model.Complaint {
	c.Votes = []model.Vote{}
	for _, v := range s.votes {
		if v.TicketID == c.TicketID {
			c.Votes = append(c.Votes, v)
		}
	}
	return c
}

func (s *memStore) ListComplaints(context.Context) ([]model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		out = append(out, s.withVotes(c))
	}
	return out, nil
}

func (s *memStore) ListPublicComplaints(ctx context.Context) ([]model.Complaint, error) {
	all, _ := s.ListComplaints(ctx)
	out := []model.Complaint{}
	for _, c := range all {
		if c.IsPublic {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetComplaint(_ context.Context, ticketID uuid.UUID) (model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetComplaint")
	for _, c := range s.complaints {
		if c.TicketID == ticketID {
			return s.withVotes(c), nil
		}
	}
	return model.Complaint{}, ErrComplaintNotFound
}

func (s *memStore) CreateComplaint(_ context.Context, c model.Complaint) (model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CreateComplaint")
	c.TicketID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	c.Status = model.StatusNotStarted
	c.Votes = []model.Vote{}
	s.complaints = append(s.complaints, c)
	return c, nil
}

func (s *memStore) find(ticketID, userID uuid.UUID) int {
	for i, c := range s.complaints {
		if c.TicketID == ticketID && c.UserID == userID {
			return i
		}
	}
	return -1
}

func (s *memStore) UpdateComplaint(_ context.Context, c model.Complaint) (model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateComplaint")
	i := s.find(c.TicketID, c.UserID)
	if i < 0 {
		return model.Complaint{}, ErrComplaintNotFound
	}
	cur := &s.complaints[i]
	cur.Title, cur.Description = c.Title, c.Description
	cur.Category, cur.SubCategory = c.Category, c.SubCategory
	cur.IsPublic = c.IsPublic
	return s.withVotes(*cur), nil
}

func (s *memStore) DeleteComplaint(_ context.Context, ticketID, userID uuid.UUID) (model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteComplaint")
	i := s.find(ticketID, userID)
	if i < 0 {
		return model.Complaint{}, ErrComplaintNotFound
	}
	deleted := s.complaints[i]
	s.complaints = append(s.complaints[:i], s.complaints[i+1:]...)
	return deleted, nil
}

func (s *memStore) SetComplaintImage(_ context.Context, ticketID, userID uuid.UUID, img storage.Image) (model.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SetComplaintImage")
	i := s.find(ticketID, userID)
	if i < 0 {
		return model.Complaint{}, ErrComplaintNotFound
	}
	previous := s.complaints[i]
	s.complaints[i].ImageID = &img.PublicID
	s.complaints[i].ImageURL = &img.URL
	return previous, nil
}

func (s *memStore) UpdateComplaintStatus(_ context.Context, ticketID uuid.UUID, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateComplaintStatus")
	for i := range s.complaints {
		if s.complaints[i].TicketID == ticketID {
			s.complaints[i].Status = status
			return nil
		}
	}
	return ErrComplaintNotFound
}

func (s *memStore) CreateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.User{}, ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

func (s *memStore) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) SetUserRole(_ context.Context, email string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			u.Role = role
			s.users[id] = u
			return nil
		}
	}
	return ErrUserNotFound
}

func (s *memStore) ListVotes(_ context.Context, ticketID uuid.UUID) ([]model.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListVotes")
	out := []model.Vote{}
	for _, v := range s.votes {
		if v.TicketID == ticketID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memStore) InsertVote(_ context.Context, v model.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("InsertVote")
	s.votes = append(s.votes, v)
	return nil
}

func (s *memStore) UpdateVote(_ context.Context, voteID uuid.UUID, upvote bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateVote")
	for i := range s.votes {
		if s.votes[i].ID == voteID {
			s.votes[i].Upvote = upvote
			return nil
		}
	}
	return ErrVoteNotFound
}

func (s *memStore) DeleteVote(_ context.Context, voteID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteVote")
	for i := range s.votes {
		if s.votes[i].ID == voteID {
			s.votes = append(s.votes[:i], s.votes[i+1:]...)
			return nil
		}
	}
	return ErrVoteNotFound
}

type publishedEvent struct {
	Event    string
	TicketID uuid.UUID
	Payload  map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event string, ticketID uuid.UUID, payload map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Event: event, TicketID: ticketID, Payload: payload})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

type testServer struct {
	api     *API
	store   *memStore
	events  *recordingPublisher
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		JwtSecret:        "test-secret",
		JwtExpires:       "1h",
		AdminEmails:      []string{"dean@uni.test"},
		SubmitRatePerMin: 600,
		SubmitBurst:      100,
		MaxImageBytes:    5 << 20,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	store := newMemStore()
	pub := &recordingPublisher{}

	api := &API{Config: cfg, Store: store, Events: pub}
	api.Init()

	return &testServer{api: api, store: store, events: pub, handler: api.setUpServerHandler()}
}

func (ts *testServer) addUser(t *testing.T, email string, role model.Role) (model.User, string) {
	t.Helper()
	u, err := ts.store.CreateUser(context.Background(), model.User{Email: email, Role: role, AuthProvider: providerEmail})
	require.NoError(t, err)
	token, _, err := ts.api.createToken(u)
	require.NoError(t, err)
	return u, token
}

func (ts *testServer) addComplaint(owner uuid.UUID, title, category, sub string, public bool) model.Complaint {
	c, _ := ts.store.CreateComplaint(context.Background(), model.Complaint{
		Title:       title,
		Description: "a description long enough",
		Category:    category,
		SubCategory: sub,
		IsPublic:    public,
		UserID:      owner,
	})
	return c
}

type envelope struct {
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}
