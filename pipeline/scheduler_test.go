package pipeline

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDebouncesTriggers(t *testing.T) {
	backend := newBackend()
	doc := &memDocument{anchors: []Anchor{{Href: "https://pay.example.com/s/abc123"}}}

	p := newPipeline(backend)
	s := NewScheduler(p, doc, WithDebounce(30*time.Millisecond))
	defer s.Stop()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		s.Notify(ctx, TriggerMutation)
	}

	time.Sleep(100 * time.Millisecond)
	p.Wait()

	// Ten triggers collapse into one scan, one resolve.
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.resolveCalls))
	assert.Len(t, doc.Cards(), 1)
}

func TestSchedulerInitialDelay(t *testing.T) {
	backend := newBackend()
	doc := &memDocument{anchors: []Anchor{{Href: "https://pay.example.com/s/abc123"}}}

	p := newPipeline(backend)
	s := NewScheduler(p, doc, WithInitialDelay(20*time.Millisecond))
	defer s.Stop()

	s.Start(context.Background())
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.resolveCalls))

	time.Sleep(60 * time.Millisecond)
	p.Wait()
	assert.Len(t, doc.Cards(), 1)
}

func TestSchedulerStopCancelsPendingScan(t *testing.T) {
	backend := newBackend()
	doc := &memDocument{anchors: []Anchor{{Href: "https://pay.example.com/s/abc123"}}}

	p := newPipeline(backend)
	s := NewScheduler(p, doc, WithDebounce(20*time.Millisecond))

	s.Notify(context.Background(), TriggerMutation)
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.resolveCalls))
}

func TestSchedulerNavigationResets(t *testing.T) {
	backend := newBackend()
	doc := &memDocument{anchors: []Anchor{{Href: "https://pay.example.com/s/abc123"}}}

	p := newPipeline(backend)
	s := NewScheduler(p, doc, WithDebounce(10*time.Millisecond))
	defer s.Stop()

	ctx := context.Background()
	p.Run(ctx, doc)
	require.Len(t, doc.Cards(), 1)

	s.Notify(ctx, TriggerNavigation)
	time.Sleep(50 * time.Millisecond)
	p.Wait()

	// Same document, so the card was rendered again after the reset.
	assert.Len(t, doc.Cards(), 2)
}

func TestParseHTMLExtractsAnchorsAndText(t *testing.T) {
	page := `<html><body>
		<a href="https://pay.example.com/s/abc123">donate</a>
		<a href="#top">top</a>
		<p>see https://bit.ly/feed1 for details</p>
		<script>var x = "https://bit.ly/hidden";</script>
	</body></html>`

	doc, err := ParseHTML(strings.NewReader(page))
	require.NoError(t, err)

	require.Len(t, doc.Anchors(), 2)
	assert.Equal(t, "https://pay.example.com/s/abc123", doc.Anchors()[0].Href)
	assert.Equal(t, "donate", doc.Anchors()[0].Text)

	joined := strings.Join(doc.TextBlocks(), " ")
	assert.Contains(t, joined, "https://bit.ly/feed1")
	assert.NotContains(t, joined, "https://bit.ly/hidden")
}
