package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"transport-net/models"
)

// UserHeader carries the caller's user id on API requests.
const UserHeader = "X-User-ID"

// Error codes returned in API error bodies.
const (
	CodeNotFound          = "not_found"
	CodeInsufficientFunds = "insufficient_funds"
	CodeStationInUse      = "station_in_use"
	CodeInvalidEndpoints  = "invalid_endpoints"
	CodeInvalidID         = "invalid_id"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RemoteStore talks to the REST API served by package handlers.
type RemoteStore struct {
	baseURL string
	userID  string
	client  *http.Client
}

// NewRemoteStore creates a client for the API rooted at baseURL
// (for example "http://localhost:3000/api").
func NewRemoteStore(baseURL, userID string, client *http.Client) *RemoteStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		client:  client,
	}
}

// NewID returns a random UUID; the server accepts client-chosen ids.
func (s *RemoteStore) NewID() string { return uuid.NewString() }

func (s *RemoteStore) GetNetworks(ctx context.Context) ([]models.Network, error) {
	var out []models.Network
	err := s.do(ctx, http.MethodGet, "/network", nil, &out)
	return out, err
}

func (s *RemoteStore) GetNetwork(ctx context.Context, id string) (*models.Network, error) {
	var out models.Network
	if err := s.do(ctx, http.MethodGet, "/network/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RemoteStore) CreateNetwork(ctx context.Context, req models.CreateNetworkRequest) (*models.Network, error) {
	var out models.Network
	if err := s.do(ctx, http.MethodPost, "/network", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RemoteStore) UpdateNetworkMoney(ctx context.Context, networkID string, money float64) error {
	body := models.UpdateMoneyRequest{Money: &money}
	return s.do(ctx, http.MethodPatch, "/network/"+url.PathEscape(networkID)+"/money", body, nil)
}

func (s *RemoteStore) CreateStation(ctx context.Context, req models.CreateStationRequest) (*models.Station, error) {
	var out models.Station
	if err := s.do(ctx, http.MethodPost, "/station", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RemoteStore) DeleteStation(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/station/"+url.PathEscape(id), nil, nil)
}

func (s *RemoteStore) CreateLine(ctx context.Context, req models.CreateLineRequest) (*models.Line, error) {
	var out models.Line
	if err := s.do(ctx, http.MethodPost, "/line", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RemoteStore) AddStationToLine(ctx context.Context, lineID, stationID string) (*models.LineStop, error) {
	var out models.LineStop
	body := models.AddStationToLineRequest{StationID: stationID}
	if err := s.do(ctx, http.MethodPost, "/line/"+url.PathEscape(lineID)+"/stations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RemoteStore) DeleteLine(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/line/"+url.PathEscape(id), nil, nil)
}

func (s *RemoteStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *RemoteStore) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(UserHeader, s.userID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return apiError(resp.StatusCode, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func apiError(status int, body ErrorResponse) error {
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	var sentinel error
	switch body.Code {
	case CodeNotFound:
		sentinel = ErrNotFound
	case CodeInsufficientFunds:
		sentinel = ErrInsufficientFunds
	case CodeStationInUse:
		sentinel = ErrStationInUse
	case CodeInvalidEndpoints:
		sentinel = ErrInvalidEndpoints
	case CodeInvalidID:
		sentinel = ErrInvalidID
	}
	if sentinel == nil && status == http.StatusNotFound {
		sentinel = ErrNotFound
	}

	if sentinel != nil {
		return fmt.Errorf("api %d: %s: %w", status, msg, sentinel)
	}
	return fmt.Errorf("api %d: %s", status, msg)
}
