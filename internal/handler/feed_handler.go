package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/labstack/echo/v4"

	"github.com/austinpray/feed-baby/internal/auth"
	"github.com/austinpray/feed-baby/internal/errors"
	"github.com/austinpray/feed-baby/internal/model"
	"github.com/austinpray/feed-baby/internal/service"
	"github.com/austinpray/feed-baby/internal/units"
)

// FeedHandler handles feed endpoints.
type FeedHandler struct {
	feeds service.FeedService
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(feeds service.FeedService) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

// FeedResponse is a feed with its derived display volume in ounces.
type FeedResponse struct {
	model.Feed
	Ounces string `json:"ounces"`
}

func newFeedResponse(feed model.Feed) FeedResponse {
	return FeedResponse{
		Feed:   feed,
		Ounces: units.MicrolitersToOunces(feed.VolumeUL).StringFixed(2),
	}
}

func newFeedResponses(feeds []model.Feed) []FeedResponse {
	out := make([]FeedResponse, 0, len(feeds))
	for _, feed := range feeds {
		out = append(out, newFeedResponse(feed))
	}
	return out
}

// HomeResponse is the payload of the home page: recent feeds plus the
// identity of the viewer, if any. The CSRF token rides along for
// authenticated viewers so the client can echo it on writes.
type HomeResponse struct {
	Feeds     []FeedResponse `json:"feeds"`
	User      *model.User    `json:"user,omitempty"`
	CSRFToken string         `json:"csrf_token,omitempty"`
}

// FeedPageResponse is one page of the feed listing.
type FeedPageResponse struct {
	Feeds   []FeedResponse `json:"feeds"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int64          `json:"total"`
}

// FeedFormResponse bootstraps the feed entry form.
type FeedFormResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// CreateFeedRequest represents a feed form submission.
type CreateFeedRequest struct {
	Ounces   string `json:"ounces" form:"ounces"`
	Time     string `json:"time" form:"time"`
	Date     string `json:"date" form:"date"`
	Timezone string `json:"timezone" form:"timezone"`
}

// Home godoc
// @Summary Recent feeds and the current viewer
// @Tags feeds
// @Produce json
// @Success 200 {object} HomeResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router / [get]
func (h *FeedHandler) Home(c echo.Context) error {
	feeds, err := h.feeds.Recent(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp := HomeResponse{Feeds: newFeedResponses(feeds)}
	if user, ok := auth.CurrentUser(c); ok {
		resp.User = user
		if token, ok := auth.CSRFToken(c); ok {
			resp.CSRFToken = token
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary Paginated feed listing
// @Tags feeds
// @Produce json
// @Param page query int false "Page number, 1-based"
// @Param per_page query int false "Page size, capped at 100"
// @Success 200 {object} FeedPageResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /feeds [get]
func (h *FeedHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	result, err := h.feeds.List(c.Request().Context(), page, perPage)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, FeedPageResponse{
		Feeds:   newFeedResponses(result.Feeds),
		Page:    result.Page,
		PerPage: result.PerPage,
		Total:   result.Total,
	})
}

// Calendar godoc
// @Summary Feeds as an iCalendar file
// @Tags feeds
// @Produce text/calendar
// @Success 200 {string} string
// @Failure 500 {object} errors.ErrorResponse
// @Router /feeds.ics [get]
func (h *FeedHandler) Calendar(c echo.Context) error {
	feeds, err := h.feeds.ListAll(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//feed-baby//feeds//EN")
	for _, feed := range feeds {
		event := cal.AddEvent(fmt.Sprintf("feed-%d@feed-baby", feed.ID))
		event.SetStartAt(feed.FedAt.UTC())
		event.SetEndAt(feed.FedAt.UTC().Add(15 * time.Minute))
		event.SetDtStampTime(feed.CreatedAt.UTC())
		event.SetSummary(fmt.Sprintf("Feed: %s oz", units.MicrolitersToOunces(feed.VolumeUL).StringFixed(2)))
	}

	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

// NewForm godoc
// @Summary Bootstrap the feed entry form
// @Tags feeds
// @Produce json
// @Success 200 {object} FeedFormResponse
// @Success 303
// @Router /feeds/new [get]
func (h *FeedHandler) NewForm(c echo.Context) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/login?next=feeds_new")
	}
	token, _ := auth.CSRFToken(c)
	return c.JSON(http.StatusOK, FeedFormResponse{CSRFToken: token})
}

// Create godoc
// @Summary Log a feed
// @Tags feeds
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param ounces formData string true "Volume in ounces, 0.01-10"
// @Param time formData string true "Time of day, HH:MM"
// @Param date formData string true "Date, YYYY-MM-DD"
// @Param timezone formData string true "IANA timezone name"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Success 303
// @Router /feeds [post]
func (h *FeedHandler) Create(c echo.Context) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/login?next=feeds_new")
	}

	var req CreateFeedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	feed, err := h.feeds.Create(c.Request().Context(), service.FeedForm{
		Ounces:   req.Ounces,
		Time:     req.Time,
		Date:     req.Date,
		Timezone: req.Timezone,
	})
	if err != nil {
		var fieldErrs service.FieldErrors
		if stderrors.As(err, &fieldErrs) {
			return c.JSON(http.StatusBadRequest, errors.ErrorResponse{
				Error:  "invalid feed data",
				Code:   "INVALID_FEED",
				Fields: fieldErrs,
			})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"feed":    newFeedResponse(*feed),
	})
}

// Delete godoc
// @Summary Delete a feed
// @Tags feeds
// @Produce json
// @Param id path int true "Feed ID"
// @Success 303
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /feeds/{id} [delete]
func (h *FeedHandler) Delete(c echo.Context) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return c.Redirect(http.StatusSeeOther, "/login?next=feeds_list")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid feed id")
	}

	if err := h.feeds.Delete(c.Request().Context(), uint(id)); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.Redirect(http.StatusSeeOther, "/feeds")
}
