package hubspot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
)

const (
	DefaultBaseURL = "https://api.hubapi.com"

	pageLimit        = 100
	contactBatchSize = 100
	pageDelay        = 100 * time.Millisecond
	retryAttempts    = 3
)

// Client talks to the HubSpot CRM v3 API with a private app access token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("access token is required")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type pagingCursor struct {
	Next *struct {
		After string `json:"after"`
	} `json:"next"`
}

type dealObject struct {
	ID           string            `json:"id"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
	Properties   map[string]string `json:"properties"`
	Associations struct {
		Contacts struct {
			Results []struct {
				ID string `json:"id"`
			} `json:"results"`
		} `json:"contacts"`
	} `json:"associations"`
}

type dealsPage struct {
	Results []dealObject  `json:"results"`
	Paging  *pagingCursor `json:"paging"`
}

// Deal is one extracted deal plus its associated contact ids, in extraction
// order (the last association is the most recent one).
type Deal struct {
	Row        store.DealRow
	ContactIDs []string
}

// ListAllDeals pages through every deal, requesting the given properties and
// contact associations in the same call. Pagination follows the paging.next
// cursor until exhausted, with a polite delay between pages.
func (c *Client) ListAllDeals(ctx context.Context, properties []string) ([]Deal, error) {
	logger := zerolog.Ctx(ctx)

	var deals []Deal
	after := ""
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("properties", strings.Join(properties, ","))
		params.Set("associations", "contacts")
		params.Set("limit", fmt.Sprintf("%d", pageLimit))
		if after != "" {
			params.Set("after", after)
		}

		var result dealsPage
		err := c.get(ctx, "/crm/v3/objects/deals?"+params.Encode(), &result)
		if err != nil {
			return nil, fmt.Errorf("fetch deals page %d: %w", page, err)
		}

		for _, obj := range result.Results {
			deal := Deal{
				Row: store.DealRow{
					DealID:     obj.ID,
					CreatedAt:  obj.CreatedAt,
					UpdatedAt:  obj.UpdatedAt,
					Properties: obj.Properties,
				},
			}
			if deal.Row.Properties == nil {
				deal.Row.Properties = map[string]string{}
			}
			for _, assoc := range obj.Associations.Contacts.Results {
				deal.ContactIDs = append(deal.ContactIDs, assoc.ID)
			}
			deals = append(deals, deal)
		}

		logger.Debug().Int("page", page).Int("deals", len(result.Results)).Msg("fetched deals page")

		if result.Paging == nil || result.Paging.Next == nil || result.Paging.Next.After == "" {
			break
		}
		after = result.Paging.Next.After

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pageDelay):
		}
	}
	return deals, nil
}

// Contact holds the contact properties used to annotate deals.
type Contact struct {
	FullName string
	Email    string
	Campaign string
}

type contactBatchResponse struct {
	Results []struct {
		ID         string            `json:"id"`
		Properties map[string]string `json:"properties"`
	} `json:"results"`
}

// BatchReadContacts resolves contact properties in batches of 100.
func (c *Client) BatchReadContacts(ctx context.Context, contactIDs []string) (map[string]Contact, error) {
	contacts := make(map[string]Contact, len(contactIDs))

	for start := 0; start < len(contactIDs); start += contactBatchSize {
		end := start + contactBatchSize
		if end > len(contactIDs) {
			end = len(contactIDs)
		}

		inputs := make([]map[string]string, 0, end-start)
		for _, id := range contactIDs[start:end] {
			inputs = append(inputs, map[string]string{"id": id})
		}
		payload := map[string]any{
			"properties": []string{"firstname", "lastname", "email", "lemlistlmlstcampaign"},
			"inputs":     inputs,
		}

		var result contactBatchResponse
		if err := c.post(ctx, "/crm/v3/objects/contacts/batch/read", payload, &result); err != nil {
			return nil, fmt.Errorf("batch read contacts: %w", err)
		}

		for _, r := range result.Results {
			fullName := strings.TrimSpace(r.Properties["firstname"] + " " + r.Properties["lastname"])
			contacts[r.ID] = Contact{
				FullName: fullName,
				Email:    r.Properties["email"],
				Campaign: r.Properties["lemlistlmlstcampaign"],
			}
		}
	}
	return contacts, nil
}

// CheckConnection fetches a single deal to validate the token and API access.
func (c *Client) CheckConnection(ctx context.Context) error {
	var result dealsPage
	if err := c.get(ctx, "/crm/v3/objects/deals?limit=1", &result); err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	return retry.Do(
		func() error {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", "Bearer "+c.token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				return json.NewDecoder(resp.Body).Decode(out)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("hubspot returned %d for %s", resp.StatusCode, path)
			default:
				// auth and validation errors will not heal on retry
				msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return retry.Unrecoverable(
					fmt.Errorf("hubspot returned %d for %s: %s", resp.StatusCode, path, string(msg)))
			}
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}
