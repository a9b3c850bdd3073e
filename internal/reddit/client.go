package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meme-journalist/internal/model"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// maxPageSize is the largest listing page the API serves per request.
const maxPageSize = 100

const (
	// OAuthBaseURL serves authenticated API requests.
	OAuthBaseURL = "https://oauth.reddit.com"
	// PublicBaseURL serves anonymous .json listings.
	PublicBaseURL = "https://www.reddit.com"
)

// Options configures a Client.
type Options struct {
	ClientID          string
	ClientSecret      string
	TokenURL          string
	APIBaseURL        string
	UserAgent         string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client is a minimal read-only Reddit API client.
// With credentials it authenticates app-only via the client_credentials grant.
type Client struct {
	baseAPI   string
	anonymous bool // listings are requested as /r/{c}/hot.json
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a new Reddit client. With credentials APIBaseURL
// defaults to OAuthBaseURL. Without them the client is anonymous and the
// OAuth host, which rejects tokenless requests, is replaced by PublicBaseURL.
func NewClient(opts Options) *Client {
	anonymous := opts.ClientID == "" || opts.ClientSecret == ""
	base := strings.TrimRight(strings.TrimSpace(opts.APIBaseURL), "/")
	switch {
	case anonymous && (base == "" || base == OAuthBaseURL):
		base = PublicBaseURL
	case base == "":
		base = OAuthBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = "MemeBot 1.0"
	}
	plain := &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{ua: ua, base: http.DefaultTransport},
	}
	hc := plain
	if !anonymous {
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		// token requests and API requests share the user agent transport
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, plain)
		hc = cc.Client(ctx)
		hc.Timeout = timeout
	}
	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), 1)
	}
	return &Client{
		baseAPI:   base,
		anonymous: anonymous,
		userAgent: ua,
		client:    hc,
		limiter:   limiter,
	}
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string   `json:"kind"`
			Data linkData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// linkData mirrors the subset of t3 fields we consume.
type linkData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	CreatedUTC  float64 `json:"created_utc"`
	Subreddit   string  `json:"subreddit"`
}

// Hot returns up to limit posts from the community's hot listing, in API order.
// Listings larger than one page are followed through the "after" cursor.
func (c *Client) Hot(ctx context.Context, community string, limit int) ([]model.Post, error) {
	if limit <= 0 {
		return nil, nil
	}
	posts := make([]model.Post, 0, limit)
	after := ""
	for len(posts) < limit {
		page := min(limit-len(posts), maxPageSize)
		l, err := c.listing(ctx, community, page, after)
		if err != nil {
			return nil, err
		}
		for _, ch := range l.Data.Children {
			if ch.Kind != "" && ch.Kind != "t3" {
				continue
			}
			posts = append(posts, convertLink(ch.Data, community))
			if len(posts) == limit {
				break
			}
		}
		after = l.Data.After
		if after == "" || len(l.Data.Children) < page {
			break
		}
	}
	slog.Debug("reddit: fetched listing", "community", community, "count", len(posts))
	return posts, nil
}

// listing loads one page of /r/{community}/hot.
func (c *Client) listing(ctx context.Context, community string, limit int, after string) (*listing, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	q := url.Values{
		"limit":    {strconv.Itoa(limit)},
		"raw_json": {"1"},
	}
	if after != "" {
		q.Set("after", after)
	}
	path := "/r/" + url.PathEscape(community) + "/hot"
	if c.anonymous {
		path += ".json"
	}
	endpoint := fmt.Sprintf("%s%s?%s", c.baseAPI, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("reddit: r/%s status %d", community, resp.StatusCode)
	}
	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("reddit: decode r/%s: %w", community, err)
	}
	return &l, nil
}

// convertLink maps a t3 payload to our Post model. The requested community
// name is kept so the digest shows the configured spelling.
func convertLink(d linkData, community string) model.Post {
	return model.Post{
		ID:          d.ID,
		Title:       d.Title,
		URL:         strings.TrimSpace(d.URL),
		Permalink:   d.Permalink,
		Score:       d.Score,
		NumComments: d.NumComments,
		UpvoteRatio: d.UpvoteRatio,
		CreatedUTC:  d.CreatedUTC,
		Community:   community,
	}
}

type userAgentTransport struct {
	ua   string
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.base.RoundTrip(r)
}
