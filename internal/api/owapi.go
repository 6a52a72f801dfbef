package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"overwatch-tracker/internal/config"
	"overwatch-tracker/internal/domain"

	"github.com/valyala/fasthttp"
)

var (
	// ErrProfileUnavailable covers transport failures, non-200 responses
	// and malformed bodies. Transient per tick; retried on the next sweep.
	ErrProfileUnavailable = errors.New("profile unavailable")

	// ErrProfilePrivate marks a readable response for a profile that is
	// not public. Legitimate state, not a fetch failure.
	ErrProfilePrivate = errors.New("profile is private")
)

type OWClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewOWClient(cfg *config.Config) *OWClient {
	return &OWClient{
		baseURL: strings.TrimSuffix(cfg.OWAPIBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type ProfileResponse struct {
	Name       string   `json:"name"`
	Private    bool     `json:"private"`
	RatingIcon string   `json:"ratingIcon"`
	Icon       string   `json:"icon"`
	Ratings    []Rating `json:"ratings"`
}

type Rating struct {
	Role  string `json:"role"`
	Level int    `json:"level"`
}

// Ranks splits the ratings array into per-role levels. Roles missing from
// the array (or a null array on profiles without competitive records) come
// back nil.
func (p *ProfileResponse) Ranks() (tank, damage, support *int) {
	for _, rating := range p.Ratings {
		level := rating.Level
		switch rating.Role {
		case domain.RoleTank:
			tank = &level
		case domain.RoleDamage:
			damage = &level
		case domain.RoleSupport:
			support = &level
		}
	}
	return tank, damage, support
}

// NormalizeTag converts a BattleTag to the provider's URL form; ow-api
// expects "Name-1234", not "Name#1234".
func NormalizeTag(battleTag string) string {
	return strings.ReplaceAll(battleTag, "#", "-")
}

// GetProfile fetches the complete PC profile for a BattleTag. Any failure
// to obtain a parseable 200 response maps to ErrProfileUnavailable.
func (c *OWClient) GetProfile(ctx context.Context, battleTag string) (*ProfileResponse, error) {
	url := fmt.Sprintf("%s/v1/stats/pc/eu/%s/complete", c.baseURL, NormalizeTag(battleTag))

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProfileUnavailable, resp.StatusCode())
	}

	var profile ProfileResponse
	if err := json.Unmarshal(resp.Body(), &profile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
	}
	return &profile, nil
}
