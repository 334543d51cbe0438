package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"globetrotter-service/internal/domain"
)

// ErrUnauthorized matches any 401 response. The session token is cleared
// before it is returned.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Session is one caller's view of the API: base URL, transport and the
// bearer token obtained at login. It is safe for concurrent use.
type Session struct {
	baseURL  string
	http     *http.Client
	adminKey string

	mu    sync.RWMutex
	token string
}

// NewSession returns a logged-out session. httpClient may be nil.
func NewSession(baseURL string, httpClient *http.Client) *Session {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Session{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithAdminKey sets the key sent on catalog administration calls.
func (s *Session) WithAdminKey(key string) *Session {
	s.adminKey = key
	return s
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) LoggedIn() bool { return s.Token() != "" }

func (s *Session) Logout() { s.SetToken("") }

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Session) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	var out authResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := s.do(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return domain.User{}, err
	}
	s.SetToken(out.Token)
	return out.User, nil
}

func (s *Session) Login(ctx context.Context, email, password string) (domain.User, error) {
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := s.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return domain.User{}, err
	}
	s.SetToken(out.Token)
	return out.User, nil
}

func (s *Session) Me(ctx context.Context) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	err := s.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	return out.User, err
}

func (s *Session) Profile(ctx context.Context, username string) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	err := s.do(ctx, http.MethodGet, "/api/auth/user/"+url.PathEscape(username), nil, &out)
	return out.User, err
}

func (s *Session) Question(ctx context.Context) (domain.Question, error) {
	var out struct {
		Question domain.Question `json:"question"`
	}
	err := s.do(ctx, http.MethodGet, "/api/game/question", nil, &out)
	return out.Question, err
}

func (s *Session) Answer(ctx context.Context, destinationID, answer string) (domain.AnswerResult, error) {
	var out struct {
		Result domain.AnswerResult `json:"result"`
	}
	body := map[string]string{"destinationId": destinationID, "answer": answer}
	err := s.do(ctx, http.MethodPost, "/api/game/answer", body, &out)
	return out.Result, err
}

func (s *Session) Stats(ctx context.Context) (domain.UserStats, error) {
	var out struct {
		Stats domain.UserStats `json:"stats"`
	}
	err := s.do(ctx, http.MethodGet, "/api/game/stats", nil, &out)
	return out.Stats, err
}

func (s *Session) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var out struct {
		Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	}
	err := s.do(ctx, http.MethodGet, "/api/game/leaderboard", nil, &out)
	return out.Leaderboard, err
}

type challengeResponse struct {
	Challenge domain.Challenge `json:"challenge"`
}

func (s *Session) CreateChallenge(ctx context.Context) (domain.Challenge, error) {
	var out challengeResponse
	err := s.do(ctx, http.MethodPost, "/api/challenge/create", nil, &out)
	return out.Challenge, err
}

func (s *Session) Challenge(ctx context.Context, code string) (domain.Challenge, error) {
	var out challengeResponse
	err := s.do(ctx, http.MethodGet, "/api/challenge/"+url.PathEscape(code), nil, &out)
	return out.Challenge, err
}

func (s *Session) JoinChallenge(ctx context.Context, code string) (domain.Challenge, error) {
	var out challengeResponse
	err := s.do(ctx, http.MethodPost, "/api/challenge/join/"+url.PathEscape(code), nil, &out)
	return out.Challenge, err
}

func (s *Session) UpdateChallengeScore(ctx context.Context, code string) (domain.Challenge, error) {
	var out challengeResponse
	err := s.do(ctx, http.MethodPut, "/api/challenge/update/"+url.PathEscape(code), nil, &out)
	return out.Challenge, err
}

// SeedDataset returns the number of destinations inserted.
func (s *Session) SeedDataset(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := s.do(ctx, http.MethodPost, "/api/dataset/seed", nil, &out)
	return out.Count, err
}

// ExpandDataset returns the number of generated destinations inserted.
func (s *Session) ExpandDataset(ctx context.Context, count int) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := s.do(ctx, http.MethodPost, "/api/dataset/expand", map[string]int{"count": count}, &out)
	return out.Count, err
}

func (s *Session) Destinations(ctx context.Context) ([]domain.Destination, error) {
	var out struct {
		Destinations []domain.Destination `json:"destinations"`
	}
	err := s.do(ctx, http.MethodGet, "/api/dataset/destinations", nil, &out)
	return out.Destinations, err
}

func (s *Session) AddDestination(ctx context.Context, d domain.Destination) (domain.Destination, error) {
	var out struct {
		Destination domain.Destination `json:"destination"`
	}
	err := s.do(ctx, http.MethodPost, "/api/dataset/destination", d, &out)
	return out.Destination, err
}

func (s *Session) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := s.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if s.adminKey != "" && strings.HasPrefix(path, "/api/dataset/") {
		req.Header.Set("X-Admin-Key", s.adminKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if resp.StatusCode == http.StatusUnauthorized {
			s.Logout()
		}
		if envelope.Message == "" {
			envelope.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Message, Detail: envelope.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
