package sampler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrNoLink is returned when Sample is called without a usable network link.
var ErrNoLink = errors.New("no network link")

// HTTPStatusError reports a non-200 response from the endpoint.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("endpoint returned HTTP %d", e.Code)
}

// ParseError reports a body that could not be decoded into a position.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse position: " + e.Reason
}

// TransportError wraps socket, DNS and TLS failures from the HTTP client.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Sample is one sub-satellite point as reported by the endpoint.
type Sample struct {
	Lat        float64
	Lon        float64
	ReceivedAt uint32 // scheduler clock millis
}

// coordinate accepts the endpoint's numeric fields whether they arrive as
// JSON strings ("51.0") or JSON numbers (51.0).
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", string(data))
	}
	*c = coordinate(v)
	return nil
}

type positionBody struct {
	ISSPosition struct {
		Latitude  *coordinate `json:"latitude"`
		Longitude *coordinate `json:"longitude"`
	} `json:"iss_position"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

// Source yields position samples; the scheduler only sees this.
type Source interface {
	Sample(nowMs uint32) (Sample, error)
}

// HTTPSampler fetches the sub-satellite point from a web endpoint. One GET
// per call, bounded by the client timeout, no internal retries; waiting for
// the next period is the scheduler's business.
type HTTPSampler struct {
	URL    string
	Client *http.Client
}

func NewHTTPSampler(url string, timeout time.Duration) *HTTPSampler {
	return &HTTPSampler{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSampler) Sample(nowMs uint32) (Sample, error) {
	resp, err := s.Client.Get(s.URL)
	if err != nil {
		return Sample{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Sample{}, &HTTPStatusError{Code: resp.StatusCode}
	}

	var body positionBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Sample{}, &ParseError{Reason: err.Error()}
	}
	if body.ISSPosition.Latitude == nil {
		return Sample{}, &ParseError{Reason: "missing iss_position.latitude"}
	}
	if body.ISSPosition.Longitude == nil {
		return Sample{}, &ParseError{Reason: "missing iss_position.longitude"}
	}

	return Sample{
		Lat:        float64(*body.ISSPosition.Latitude),
		Lon:        float64(*body.ISSPosition.Longitude),
		ReceivedAt: nowMs,
	}, nil
}
