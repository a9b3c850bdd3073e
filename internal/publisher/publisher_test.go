package publisher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meme-journalist/internal/mailer"
	"meme-journalist/internal/model"
	"meme-journalist/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, e *mailer.Email) error {
	return m.Called(ctx, e).Error(0)
}

type fakeMirror struct {
	saved model.Digest
	ttl   time.Duration
	err   error
}

func (f *fakeMirror) SaveDigest(_ context.Context, _ time.Time, d model.Digest, ttl time.Duration) error {
	f.saved, f.ttl = d, ttl
	return f.err
}

type fakeSummarizer struct {
	out string
	err error
}

func (f fakeSummarizer) SummarizeDigest(context.Context, model.Digest, string) (string, error) {
	return f.out, f.err
}

type failingRecorder struct{}

func (failingRecorder) Save(time.Time, model.Digest) (string, error) {
	return "", errors.New("disk full")
}

var now = time.Date(2025, 10, 16, 9, 0, 0, 0, time.Local)

func memes() model.Digest {
	return model.Digest{
		{Title: "top", ImageURL: "https://i.redd.it/a.jpg", SourcePageURL: "https://reddit.com/r/memes/a", Community: "memes", Score: 100, CommentCount: 50, UpvoteRatio: 0.9, HotnessScore: 460, CreatedAt: now.Add(-time.Hour)},
		{Title: "next", ImageURL: "https://i.redd.it/b.png", SourcePageURL: "https://reddit.com/r/memes/b", Community: "memes", Score: 10, HotnessScore: 40, CreatedAt: now.Add(-30 * time.Hour)},
	}
}

func newPublisher(t *testing.T, s mailer.Sender) (*Publisher, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Publisher{
		Recorder: record.NewStore(t.TempDir(), "memes_"),
		Sender:   s,
		From:     "bot@example.com",
		To:       []string{"me@example.com"},
		Out:      &out,
	}, &out
}

func TestPublishSendsAndSaves(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.MatchedBy(func(e *mailer.Email) bool {
		return e.Subject == "🎉 Today's Top 2 Memes - 2025-10-16" &&
			e.From == "bot@example.com" &&
			assert.ObjectsAreEqual([]string{"me@example.com"}, e.To) &&
			bytes.Contains([]byte(e.HTML), []byte("#1 top"))
	})).Return(nil).Once()

	p, out := newPublisher(t, s)
	res, err := p.Publish(context.Background(), memes(), now)
	require.NoError(t, err)
	s.AssertExpectations(t)

	assert.True(t, res.Delivered)
	assert.NoError(t, res.DeliveryErr)
	assert.Equal(t, "memes_20251016.json", filepath.Base(res.RecordPath))
	assert.Contains(t, out.String(), "Email sent successfully")
	assert.Contains(t, out.String(), "Saved to "+res.RecordPath)
}

func TestPublishTransportFailureStillPersists(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).
		Return(&mailer.TransportError{Transport: "smtp", Err: errors.New("535 bad credentials")})

	p, out := newPublisher(t, s)
	res, err := p.Publish(context.Background(), memes(), now)
	require.NoError(t, err)
	assert.False(t, res.Delivered)
	assert.True(t, mailer.IsTransportError(res.DeliveryErr))
	assert.Contains(t, out.String(), "Failed to send email")

	b, err := os.ReadFile(res.RecordPath)
	require.NoError(t, err)
	got, err := record.Decode(b)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "top", got[0].Title)
}

func TestPublishWrapsPlainSendErrors(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
	p, _ := newPublisher(t, s)
	res, err := p.Publish(context.Background(), memes(), now)
	require.NoError(t, err)
	var te *mailer.TransportError
	require.ErrorAs(t, res.DeliveryErr, &te)
	assert.Equal(t, "send", te.Transport)
}

func TestPublishPersistFailureStillAttemptsDelivery(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	m := &fakeMirror{}
	p, _ := newPublisher(t, s)
	p.Recorder = failingRecorder{}
	p.Mirror = m

	res, err := p.Publish(context.Background(), memes(), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, res.Delivered)
	assert.Nil(t, m.saved)
	s.AssertExpectations(t)
}

func TestPublishWithoutSender(t *testing.T) {
	p, _ := newPublisher(t, nil)
	res, err := p.Publish(context.Background(), memes(), now)
	require.NoError(t, err)
	assert.True(t, mailer.IsTransportError(res.DeliveryErr))
	assert.FileExists(t, res.RecordPath)
}

func TestPublishMirrors(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	m := &fakeMirror{}
	p, _ := newPublisher(t, s)
	p.Mirror = m
	p.MirrorTTL = 48 * time.Hour

	_, err := p.Publish(context.Background(), memes(), now)
	require.NoError(t, err)
	assert.Len(t, m.saved, 2)
	assert.Equal(t, 48*time.Hour, m.ttl)
}

func TestPublishMirrorFailureIgnored(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(nil)
	p, _ := newPublisher(t, s)
	p.Mirror = &fakeMirror{err: errors.New("redis down")}
	_, err := p.Publish(context.Background(), memes(), now)
	require.NoError(t, err)
}

func TestRenderHTMLUsesSummarizer(t *testing.T) {
	p, _ := newPublisher(t, nil)
	p.Summarizer = fakeSummarizer{out: "A **great** day for cats."}
	html, err := p.RenderHTML(context.Background(), memes(), now)
	require.NoError(t, err)
	assert.Contains(t, html, "A <strong>great</strong> day for cats.")

	p.Summarizer = fakeSummarizer{err: errors.New("quota")}
	html, err = p.RenderHTML(context.Background(), memes(), now)
	require.NoError(t, err)
	assert.Contains(t, html, "#1 top")
	assert.NotContains(t, html, "cats")
}
