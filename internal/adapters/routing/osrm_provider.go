package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/platform/obs"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://router.project-osrm.org"
	DefaultProfile = "driving"
)

type routeResponse struct {
	Code   string       `json:"code"`
	Routes *[]osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry *struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
}

type OSRMOptions struct {
	BaseURL     string
	Profile     string
	Timeout     time.Duration
	MaxAttempts int
	UserAgent   string
	HTTPClient  *http.Client
	Logger      logrus.FieldLogger
}

// OSRMClient implements RouteProvider against an OSRM-compatible /route/v1 endpoint.
//
// It owns the axis-order conversion: OSRM speaks GeoJSON (lon, lat) and everything
// returned from Route is already in (lat, lon) order.
//
// The client is safe for concurrent use.
type OSRMClient struct {
	session     *http.Client
	baseURL     string
	profile     string
	userAgent   string
	maxAttempts int
	backoff     time.Duration
	log         logrus.FieldLogger
}

func NewOSRMClient(opts OSRMOptions) (*OSRMClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("new OSRM client: base url %q must be http(s)", opts.BaseURL)
	}

	profile := strings.TrimSpace(opts.Profile)
	if profile == "" {
		profile = DefaultProfile
	}

	session := opts.HTTPClient
	if session == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		session = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &OSRMClient{
		session:     session,
		baseURL:     baseURL,
		profile:     profile,
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		backoff:     200 * time.Millisecond,
		log:         log,
	}, nil
}

// Route requests the full GeoJSON geometry from origin to destination.
// Every failure is a *domain.FetchError.
func (o *OSRMClient) Route(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, o.log, "osrm.Route")(&err)

	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%s;%s",
		o.baseURL, o.profile, origin.LonLatString(), destination.LonLatString(),
	)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("overview", "full")
		q.Set("geometries", "geojson")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		if noRoute(err) {
			return domain.Route{}, domain.NewFetchError(domain.EmptyRoute, err)
		}
		return domain.Route{}, domain.NewFetchError(domain.NetworkError, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Route{}, domain.NewFetchError(domain.MalformedResponse, fmt.Errorf("decode route response: %w", err))
	}

	return normalizeRoute(decoded)
}

// normalizeRoute converts the first OSRM route into the internal (lat, lon) representation.
// This is the only place where the axis swap happens.
func normalizeRoute(decoded routeResponse) (domain.Route, error) {
	if decoded.Routes == nil {
		return domain.Route{}, domain.NewFetchError(domain.MalformedResponse, errors.New("response has no routes field"))
	}

	routes := *decoded.Routes
	if len(routes) == 0 {
		return domain.Route{}, domain.NewFetchError(domain.EmptyRoute, errors.New("routing service returned zero routes"))
	}

	geometry := routes[0].Geometry
	if geometry == nil || len(geometry.Coordinates) == 0 {
		return domain.Route{}, domain.NewFetchError(domain.MalformedResponse, errors.New("first route has no geometry coordinates"))
	}

	coords := make([]domain.Coordinates, 0, len(geometry.Coordinates))
	for i, pair := range geometry.Coordinates {
		if len(pair) != 2 {
			return domain.Route{}, domain.NewFetchError(
				domain.MalformedResponse,
				fmt.Errorf("coordinate %d has %d components, want 2", i, len(pair)),
			)
		}
		coords = append(coords, domain.Coordinates{Lat: pair[1], Lon: pair[0]})
	}

	return domain.Route{Coordinates: coords}, nil
}

// OSRM answers 400 {"code":"NoRoute"} when the points cannot be connected.
func noRoute(err error) bool {
	var he *httpStatusError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		return false
	}

	var body struct {
		Code string `json:"code"`
	}
	if json.Unmarshal([]byte(he.Body), &body) != nil {
		return false
	}
	return body.Code == "NoRoute"
}
