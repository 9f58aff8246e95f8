// Package backend is the REST client for the remote booking/review backend.
// The backend owns all entities; this front-end only holds page-scoped
// copies of what these calls return.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediadesk/internal/metrics"
	"mediadesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// Client is a thin HTTP wrapper over the backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *limiter

	redis    *redis.Client
	cacheTTL time.Duration
}

// BookingQuery describes a bookings listing request: one status slice plus
// optional server-side pagination and free-text filters.
type BookingQuery struct {
	Status   string
	Page     int
	PageSize int
	Username string
	Service  string
	Location string
}

// BookingPage is a paginated bookings response.
type BookingPage struct {
	Results []models.Booking `json:"results"`
	Count   int              `json:"count"`
}

// New constructs a client for the given base URL. rps/burst configure the
// outbound rate limiter; timeout guards every request.
func New(baseURL string, timeout time.Duration, rps float64, burst int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    newLimiter(rps, burst),
	}
}

// UseRedisCache configures optional Redis caching for the public GET
// endpoints (reviews, services). Admin listings are never cached.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// ListReviews returns all published reviews.
func (c *Client) ListReviews(ctx context.Context) ([]models.Review, error) {
	endpoint := c.baseURL + "/reviews/"
	var reviews []models.Review

	if c.readCache(ctx, "reviews", &reviews) {
		return reviews, nil
	}

	if err := c.doGet(ctx, "reviews", endpoint, &reviews); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "reviews", reviews)
	return reviews, nil
}

// PublicServices returns the public services list.
func (c *Client) PublicServices(ctx context.Context) ([]models.Service, error) {
	endpoint := c.baseURL + "/services/"
	var services []models.Service

	if c.readCache(ctx, "services:public", &services) {
		return services, nil
	}

	if err := c.doGet(ctx, "services", endpoint, &services); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "services:public", services)
	return services, nil
}

// SubmitReview posts a review for a service on behalf of the current session.
func (c *Client) SubmitReview(ctx context.Context, serviceID int64, rating int, comment string) error {
	endpoint := fmt.Sprintf("%s/review/%d", c.baseURL, serviceID)
	body := models.ReviewSubmission{Service: serviceID, Rating: rating, Comment: comment}
	return c.doJSON(ctx, "review_submit", http.MethodPost, endpoint, body, nil)
}

// ListBookings returns one page of a status slice. An empty Status requests
// all bookings.
func (c *Client) ListBookings(ctx context.Context, q BookingQuery) (*BookingPage, error) {
	endpoint := c.baseURL + "/admin-dashboard/?" + bookingQueryValues(q, "bookings").Encode()
	var page BookingPage
	if err := c.doGet(ctx, "bookings", endpoint, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ExportBookings replays a filter state against the export action and
// returns the full matching set, unpaginated.
func (c *Client) ExportBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	q.Page = 0
	q.PageSize = 0
	endpoint := c.baseURL + "/admin-dashboard/?" + bookingQueryValues(q, "export").Encode()
	var page BookingPage
	if err := c.doGet(ctx, "export", endpoint, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// ListUsers returns all users, for booking-form pickers.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	endpoint := c.baseURL + "/admin-dashboard/?action=users"
	var users []models.User
	if err := c.doGet(ctx, "users", endpoint, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListServices returns all services via the admin action.
func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	endpoint := c.baseURL + "/admin-dashboard/?action=services"
	var services []models.Service
	if err := c.doGet(ctx, "services_admin", endpoint, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// CreateBooking creates a booking.
func (c *Client) CreateBooking(ctx context.Context, payload models.BookingPayload) error {
	endpoint := c.baseURL + "/admin-dashboard/"
	return c.doJSON(ctx, "booking_create", http.MethodPost, endpoint, payload, nil)
}

// UpdateBooking updates the booking with the given id.
func (c *Client) UpdateBooking(ctx context.Context, id int64, payload models.BookingPayload) error {
	endpoint := fmt.Sprintf("%s/admin-dashboard/%d/", c.baseURL, id)
	return c.doJSON(ctx, "booking_update", http.MethodPut, endpoint, payload, nil)
}

// DeleteBooking deletes the booking with the given id.
func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("%s/admin-dashboard/%d/", c.baseURL, id)
	return c.doJSON(ctx, "booking_delete", http.MethodDelete, endpoint, nil, nil)
}

// Ping asks the backend for the public services list to confirm
// reachability. Used by the ops health check.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.PublicServices(ctx)
	return err
}

func bookingQueryValues(q BookingQuery, action string) url.Values {
	values := url.Values{}
	values.Set("action", action)
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Username != "" {
		values.Set("username", q.Username)
	}
	if q.Service != "" {
		values.Set("service", q.Service)
	}
	if q.Location != "" {
		values.Set("location", q.Location)
	}
	return values
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, "backend:"+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, "backend:"+key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, name, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(ctx, name, req, out)
}

func (c *Client) doJSON(ctx context.Context, name, method, endpoint string, body, out any) error {
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, name, req, out)
}

func (c *Client) do(ctx context.Context, name string, req *http.Request, out any) error {
	if err := c.limiter.wait(ctx); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncBackend(name, "error")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.IncBackend(name, "error")
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	metrics.IncBackend(name, "ok")

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
