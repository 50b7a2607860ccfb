package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/austinpray/feed-baby/internal/cache"
	apperrors "github.com/austinpray/feed-baby/internal/errors"
	"github.com/austinpray/feed-baby/internal/model"
	"github.com/austinpray/feed-baby/internal/repository"
	"github.com/austinpray/feed-baby/internal/units"
)

const (
	recentFeedsCacheKey = "feeds:recent"
	recentFeedsCacheTTL = time.Minute
	recentFeedsLimit    = 20

	// DefaultPerPage bounds /feeds pagination.
	DefaultPerPage = 25
	MaxPerPage     = 100
)

var (
	minOunces = decimal.RequireFromString("0.01")
	maxOunces = decimal.RequireFromString("10")

	timeFormatRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
	dateFormatRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// FeedForm carries raw feed form fields; Validate turns them into a Feed.
type FeedForm struct {
	Ounces   string
	Time     string
	Date     string
	Timezone string
}

// FieldErrors maps form field names to user-visible validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	return apperrors.ErrInvalidFeed.Error()
}

// Unwrap makes FieldErrors match ErrInvalidFeed with errors.Is.
func (e FieldErrors) Unwrap() error {
	return apperrors.ErrInvalidFeed
}

// FeedPage is one page of the feed listing.
type FeedPage struct {
	Feeds   []model.Feed `json:"feeds"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	Total   int64        `json:"total"`
}

// FeedService handles feed operations.
type FeedService interface {
	Create(ctx context.Context, form FeedForm) (*model.Feed, error)
	Recent(ctx context.Context) ([]model.Feed, error)
	List(ctx context.Context, page, perPage int) (*FeedPage, error)
	ListAll(ctx context.Context) ([]model.Feed, error)
	Delete(ctx context.Context, id uint) error
}

type feedService struct {
	repo  repository.FeedRepository
	cache *cache.Client
}

// NewFeedService creates a new feed service.
func NewFeedService(repo repository.FeedRepository, cache *cache.Client) FeedService {
	return &feedService{
		repo:  repo,
		cache: cache,
	}
}

// Create validates the form, converts ounces to microliters and persists the
// feed. Validation failures come back as FieldErrors with per-field messages.
func (s *feedService) Create(ctx context.Context, form FeedForm) (*model.Feed, error) {
	feed, fieldErrs := form.parse()
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if err := s.repo.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}
	_ = s.cache.Delete(ctx, recentFeedsCacheKey)
	return feed, nil
}

// Recent returns the newest feeds, served from Redis when warm.
func (s *feedService) Recent(ctx context.Context) ([]model.Feed, error) {
	if data, _ := s.cache.Get(ctx, recentFeedsCacheKey); data != nil {
		var cached []model.Feed
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	feeds, err := s.repo.List(ctx, 0, recentFeedsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent feeds: %w", err)
	}

	if payload, err := json.Marshal(feeds); err == nil {
		_ = s.cache.Set(ctx, recentFeedsCacheKey, payload, recentFeedsCacheTTL)
	}
	return feeds, nil
}

// List returns one page of feeds, newest first.
func (s *feedService) List(ctx context.Context, page, perPage int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count feeds: %w", err)
	}
	feeds, err := s.repo.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	return &FeedPage{
		Feeds:   feeds,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

// ListAll returns every feed, newest first. Used by the calendar export.
func (s *feedService) ListAll(ctx context.Context) ([]model.Feed, error) {
	feeds, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// Delete removes a feed. Deleting a feed that does not exist is reported as
// ErrFeedNotFound, not a crash.
func (s *feedService) Delete(ctx context.Context, id uint) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrFeedNotFound
	}
	_ = s.cache.Delete(ctx, recentFeedsCacheKey)
	return nil
}

// parse validates every field and collects all failures instead of stopping
// at the first one.
func (f FeedForm) parse() (*model.Feed, FieldErrors) {
	fieldErrs := FieldErrors{}

	var volumeUL int64
	ounces, err := decimal.NewFromString(f.Ounces)
	switch {
	case err != nil:
		fieldErrs["ounces"] = "ounces must be a decimal number"
	case ounces.Exponent() < -2:
		fieldErrs["ounces"] = "ounces supports at most 2 decimal places"
	case ounces.LessThan(minOunces) || ounces.GreaterThan(maxOunces):
		fieldErrs["ounces"] = "ounces must be between 0.01 and 10"
	default:
		volumeUL = units.OuncesToMicroliters(ounces)
	}

	if !timeFormatRe.MatchString(f.Time) {
		fieldErrs["time"] = "time must be in HH:MM format"
	} else if _, err := time.Parse("15:04", f.Time); err != nil {
		fieldErrs["time"] = "time must be a valid time of day"
	}

	if !dateFormatRe.MatchString(f.Date) {
		fieldErrs["date"] = "date must be in YYYY-MM-DD format"
	} else if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		fieldErrs["date"] = "date must be a valid calendar date"
	}

	var loc *time.Location
	if f.Timezone == "" {
		fieldErrs["timezone"] = "timezone is required"
	} else if loc, err = time.LoadLocation(f.Timezone); err != nil {
		fieldErrs["timezone"] = "timezone must be a valid IANA timezone name"
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	fedAt, err := time.ParseInLocation("2006-01-02 15:04", f.Date+" "+f.Time, loc)
	if err != nil {
		fieldErrs["date"] = "date and time do not form a valid instant"
		return nil, fieldErrs
	}

	return &model.Feed{
		VolumeUL: volumeUL,
		FedAt:    fedAt,
		Timezone: f.Timezone,
	}, nil
}
