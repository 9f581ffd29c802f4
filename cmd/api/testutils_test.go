package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nlachan/movie-api/internal/auth"
	"github.com/nlachan/movie-api/internal/data"
	"github.com/stretchr/testify/require"
)

const (
	jokerID     = "650000000000000000000001"
	godfatherID = "650000000000000000000002"
	scarfaceID  = "650000000000000000000003"

	gangsterDescription = "Gangster films follow the rise and fall of organised criminals."
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*data.User
	nextID int
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*data.User)}
}

func cloneUser(u *data.User) *data.User {
	c := *u
	c.FavoriteMovies = append([]string{}, u.FavoriteMovies...)
	return &c
}

func (s *fakeUserStore) Insert(_ context.Context, user *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[user.Username]; ok {
		return data.ErrDuplicateUsername
	}
	s.nextID++
	user.ID = fmt.Sprintf("user-%d", s.nextID)
	user.Version = 1
	user.FavoriteMovies = []string{}
	s.users[user.Username] = cloneUser(user)
	return nil
}

func (s *fakeUserStore) GetAll(context.Context) ([]*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	users := make([]*data.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	return users, nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[username]
	if !ok {
		return nil, data.ErrNoRecordFound
	}
	return cloneUser(u), nil
}

func (s *fakeUserStore) Update(_ context.Context, user *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	var current *data.User
	for _, u := range s.users {
		if u.ID == user.ID {
			current = u
		}
	}
	if current == nil || current.Version != user.Version {
		return data.ErrEditConflict
	}
	if other, ok := s.users[user.Username]; ok && other.ID != user.ID {
		return data.ErrDuplicateUsername
	}
	delete(s.users, current.Username)
	user.Version++
	s.users[user.Username] = cloneUser(user)
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[username]; !ok {
		return data.ErrNoRecordFound
	}
	delete(s.users, username)
	return nil
}

func (s *fakeUserStore) AddFavorite(_ context.Context, username, movieID string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, data.ErrNoRecordFound
	}
	if !u.HasFavorite(movieID) {
		u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	}
	u.Version++
	return cloneUser(u), nil
}

func (s *fakeUserStore) RemoveFavorite(_ context.Context, username, movieID string) (*data.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, data.ErrNoRecordFound
	}
	kept := u.FavoriteMovies[:0]
	for _, id := range u.FavoriteMovies {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	u.FavoriteMovies = kept
	u.Version++
	return cloneUser(u), nil
}

type fakeMovieStore struct {
	movies []*data.Movie
	err    error
}

func (s *fakeMovieStore) GetAll(context.Context) ([]*data.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.movies, nil
}

func (s *fakeMovieStore) find(match func(*data.Movie) bool) (*data.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, m := range s.movies {
		if match(m) {
			return m, nil
		}
	}
	return nil, data.ErrNoRecordFound
}

func (s *fakeMovieStore) Get(_ context.Context, id string) (*data.Movie, error) {
	return s.find(func(m *data.Movie) bool { return m.ID == id })
}

func (s *fakeMovieStore) GetByTitle(_ context.Context, title string) (*data.Movie, error) {
	return s.find(func(m *data.Movie) bool { return m.Title == title })
}

func (s *fakeMovieStore) GetGenre(_ context.Context, name string) (*data.Genre, error) {
	m, err := s.find(func(m *data.Movie) bool { return strings.EqualFold(m.Genre.Name, name) })
	if err != nil {
		return nil, err
	}
	return &m.Genre, nil
}

func (s *fakeMovieStore) GetDirector(_ context.Context, name string) (*data.Director, error) {
	m, err := s.find(func(m *data.Movie) bool { return m.Director.Name == name })
	if err != nil {
		return nil, err
	}
	return &m.Director, nil
}

func seedMovies() []*data.Movie {
	gangster := data.Genre{Name: "Gangster", Description: gangsterDescription}
	return []*data.Movie{
		{
			ID:          jokerID,
			Title:       "Joker",
			Description: "A failed comedian descends into madness.",
			Genre:       data.Genre{Name: "Thriller", Description: "Suspense driven films."},
			Director:    data.Director{Name: "Todd Phillips", Bio: "American filmmaker.", BirthYear: "1970"},
			Featured:    true,
		},
		{
			ID:       godfatherID,
			Title:    "The Godfather",
			Genre:    gangster,
			Director: data.Director{Name: "Francis Ford Coppola", BirthYear: "1939"},
		},
		{
			ID:       scarfaceID,
			Title:    "Scarface",
			Genre:    gangster,
			Director: data.Director{Name: "Brian De Palma", BirthYear: "1940"},
		},
	}
}

type fakeMailer struct {
	mu         sync.Mutex
	recipients []string
}

func (m *fakeMailer) Send(recipient, templateFile string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients = append(m.recipients, recipient+" "+templateFile)
	return nil
}

type testServer struct {
	app    *application
	echo   *echo.Echo
	users  *fakeUserStore
	movies *fakeMovieStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)

	users := newFakeUserStore()
	movies := &fakeMovieStore{movies: seedMovies()}

	app := &application{
		config:        config{port: 4000, env: "development"},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		models:        data.Models{Users: users, Movies: movies},
		tokens:        tokens,
		authenticator: auth.NewAuthenticator(users),
	}
	app.config.cors.trustedOrigins = []string{"http://localhost:1234"}
	app.config.metrics.enabled = true

	return &testServer{app: app, echo: app.newServer(), users: users, movies: movies}
}

// createUser stores a user directly and returns a token issued for it.
func (ts *testServer) createUser(t *testing.T, username, password string) string {
	t.Helper()

	user := &data.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, user.Password.Set(password))
	require.NoError(t, ts.users.Insert(context.Background(), user))

	token, err := ts.app.tokens.Issue(username)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
