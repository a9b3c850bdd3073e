package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"meme-journalist/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingJSON(after string, children ...map[string]any) []byte {
	kids := make([]map[string]any, 0, len(children))
	for _, c := range children {
		kids = append(kids, map[string]any{"kind": "t3", "data": c})
	}
	b, _ := json.Marshal(map[string]any{
		"kind": "Listing",
		"data": map[string]any{"after": after, "children": kids},
	})
	return b
}

func link(id string) map[string]any {
	return map[string]any{
		"id":           id,
		"title":        "Title " + id,
		"url":          "https://i.redd.it/" + id + ".jpg",
		"permalink":    "/r/memes/comments/" + id + "/t/",
		"score":        10,
		"num_comments": 2,
		"upvote_ratio": 0.93,
		"created_utc":  1760000000.0,
		"subreddit":    "memes",
	}
}

func TestHotDecodesListing(t *testing.T) {
	var ua, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		query = r.URL.RawQuery
		assert.Equal(t, "/r/memes/hot.json", r.URL.Path)
		w.Write(listingJSON("", link("a"), link("b")))
	}))
	defer srv.Close()

	c := NewClient(Options{APIBaseURL: srv.URL, UserAgent: "test-agent"})
	posts, err := c.Hot(context.Background(), "memes", 25)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "test-agent", ua)
	assert.Contains(t, query, "limit=25")
	assert.Contains(t, query, "raw_json=1")
	assert.Equal(t, model.Post{
		ID:          "a",
		Title:       "Title a",
		URL:         "https://i.redd.it/a.jpg",
		Permalink:   "/r/memes/comments/a/t/",
		Score:       10,
		NumComments: 2,
		UpvoteRatio: 0.93,
		CreatedUTC:  1760000000,
		Community:   "memes",
	}, posts[0])
}

func TestHotFollowsAfterCursor(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		after := r.URL.Query().Get("after")
		switch n {
		case 1:
			assert.Equal(t, 100, limit)
			assert.Empty(t, after)
			kids := make([]map[string]any, 0, 100)
			for i := 0; i < 100; i++ {
				kids = append(kids, link(fmt.Sprintf("p%d", i)))
			}
			w.Write(listingJSON("t3_p99", kids...))
		default:
			assert.Equal(t, 20, limit)
			assert.Equal(t, "t3_p99", after)
			w.Write(listingJSON("t3_next", link("q0"), link("q1")))
		}
	}))
	defer srv.Close()

	c := NewClient(Options{APIBaseURL: srv.URL})
	posts, err := c.Hot(context.Background(), "memes", 120)
	require.NoError(t, err)
	assert.Len(t, posts, 102)
	assert.Equal(t, "q1", posts[101].ID)
	assert.EqualValues(t, 2, calls.Load())
}

func TestHotStopsWhenListingExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingJSON("", link("only")))
	}))
	defer srv.Close()

	posts, err := NewClient(Options{APIBaseURL: srv.URL}).Hot(context.Background(), "memes", 300)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestHotStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(Options{APIBaseURL: srv.URL}).Hot(context.Background(), "memes", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestHotMalformedNumericFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bad := link("x")
		bad["score"] = "lots"
		w.Write(listingJSON("", bad))
	}))
	defer srv.Close()

	_, err := NewClient(Options{APIBaseURL: srv.URL}).Hot(context.Background(), "memes", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode r/memes")
}

func TestClientCredentialsFlow(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "ua", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/r/memes/hot", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write(listingJSON("", link("a")))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Options{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/api/v1/access_token",
		APIBaseURL:   srv.URL,
		UserAgent:    "ua",
	})
	for i := 0; i < 2; i++ {
		posts, err := c.Hot(context.Background(), "memes", 1)
		require.NoError(t, err)
		require.Len(t, posts, 1)
	}
	assert.EqualValues(t, 1, tokenCalls.Load())
}

func TestNewClientBaseURL(t *testing.T) {
	anon := NewClient(Options{APIBaseURL: OAuthBaseURL})
	assert.Equal(t, PublicBaseURL, anon.baseAPI)
	assert.True(t, anon.anonymous)

	assert.Equal(t, PublicBaseURL, NewClient(Options{}).baseAPI)

	authed := NewClient(Options{ClientID: "id", ClientSecret: "secret"})
	assert.Equal(t, OAuthBaseURL, authed.baseAPI)
	assert.False(t, authed.anonymous)
}

type fakeLister struct {
	posts map[string][]model.Post
	fail  string
	calls []string
}

func (f *fakeLister) Hot(_ context.Context, community string, limit int) ([]model.Post, error) {
	f.calls = append(f.calls, community)
	if community == f.fail {
		return nil, errors.New("rate limited")
	}
	p := f.posts[community]
	if len(p) > limit {
		p = p[:limit]
	}
	return p, nil
}

func TestFetcherConcatenatesInOrder(t *testing.T) {
	src := &fakeLister{posts: map[string][]model.Post{
		"memes":     {{ID: "1"}, {ID: "2"}, {ID: "3"}},
		"dankmemes": {{ID: "1"}},
	}}
	var progress bytes.Buffer
	f := &Fetcher{Source: src, Progress: &progress}
	posts, err := f.Fetch(context.Background(), []string{"memes", "dankmemes"}, 2)
	require.NoError(t, err)
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"1", "2", "1"}, ids)
	assert.Equal(t, "Fetching r/memes...\nFetching r/dankmemes...\n", progress.String())
}

func TestFetcherFailsFast(t *testing.T) {
	src := &fakeLister{fail: "dankmemes"}
	f := &Fetcher{Source: src}
	_, err := f.Fetch(context.Background(), []string{"memes", "dankmemes", "me_irl"}, 5)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "r/dankmemes"))
	assert.Equal(t, []string{"memes", "dankmemes"}, src.calls)
}
