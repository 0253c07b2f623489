package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andrewpaige1/roadmap-api/roadmap"
)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	reply   func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(ctx, prompt)
}

func replyWith(text string) *fakeCompleter {
	return &fakeCompleter{reply: func(context.Context, string) (string, error) { return text, nil }}
}

func frontendRoadmap() string {
	var stages []string
	for i := 1; i <= 6; i++ {
		children := "[]"
		if i < 6 {
			children = fmt.Sprintf(`["stage-%d"]`, i+1)
		}
		stages = append(stages, fmt.Sprintf(`{
      "id": "stage-%d", "label": "Stage %d", "type": "stage", "level": %d,
      "description": "step", "duration": "1-3 months",
      "skills": ["HTML", "CSS", "JavaScript"], "resources": ["MDN", "freeCodeCamp"],
      "children": %s}`, i, i, i-1, children))
	}
	return "```json\n{\n  \"title\": \"Career Roadmap: Frontend Developer\",\n  \"description\": \"Build for the web.\",\n  \"stages\": [" +
		strings.Join(stages, ",") + "]\n}\n```"
}

func TestPrompt_CarriesContract(t *testing.T) {
	p := Prompt("  Frontend Developer ")
	assert.Contains(t, p, `become a "Frontend Developer"`)
	assert.Contains(t, p, "6-10 stages")
	assert.Contains(t, p, "3-6 skills")
	assert.Contains(t, p, "2-4 resources")
	assert.Contains(t, p, "level 0")
	assert.Contains(t, p, "only reference ids")
	assert.Contains(t, p, "no prose")

	assert.NotContains(t, Prompt(`say "hi"`), `"hi"`)
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"```JSON\n[]\n```\n":      `[]`,
	}
	for in, want := range tests {
		assert.Equal(t, want, StripFences(in))
	}
}

func TestClient_RoadmapEndToEnd(t *testing.T) {
	completer := replyWith(frontendRoadmap())
	client := NewClient(completer, DefaultOptions(), zap.NewNop())

	doc, err := client.Roadmap(context.Background(), "Frontend Developer")
	require.NoError(t, err)
	require.Len(t, doc.Stages, 6)
	assert.Equal(t, "Career Roadmap: Frontend Developer", doc.Title)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Frontend Developer")

	g := roadmap.Layout(doc.Stages)
	require.Len(t, g.Nodes, 6)
	require.Len(t, g.Edges, 5)
	for i := 1; i < len(g.Nodes); i++ {
		assert.Greater(t, g.Nodes[i].Y, g.Nodes[i-1].Y)
	}
	for i, e := range g.Edges {
		assert.Equal(t, fmt.Sprintf("stage-%d", i+1), e.Source)
		assert.Equal(t, fmt.Sprintf("stage-%d", i+2), e.Target)
	}
}

func TestClient_GeneratorUnreachable(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	client := NewClient(&fakeCompleter{reply: func(context.Context, string) (string, error) { return "", boom }},
		DefaultOptions(), zap.NewNop())

	_, err := client.Roadmap(context.Background(), "AI Engineer")
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.True(t, gerr.Retryable())
	assert.ErrorIs(t, err, boom)
}

func TestClient_EmptyResponse(t *testing.T) {
	client := NewClient(replyWith("```json\n```"), DefaultOptions(), zap.NewNop())
	_, err := client.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_UnparsableText(t *testing.T) {
	client := NewClient(replyWith("Sure! Here is a roadmap: step one, learn HTML."), DefaultOptions(), zap.NewNop())
	_, err := client.Roadmap(context.Background(), "x")
	var perr *roadmap.ParseError
	assert.True(t, errors.As(err, &perr), "got %v", err)
}

func TestClient_InvalidDocument(t *testing.T) {
	text := `{"title":"t","description":"d","stages":[{"id":"a","level":0,"children":["b"]}]}`
	client := NewClient(replyWith(text), DefaultOptions(), zap.NewNop())
	_, err := client.Roadmap(context.Background(), "x")
	var verr *roadmap.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, roadmap.RuleDanglingChild, verr.Rule)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	completer := &fakeCompleter{reply: func(context.Context, string) (string, error) {
		return "", errors.New("503 from upstream")
	}}
	opts := DefaultOptions()
	client := NewClient(completer, opts, zap.NewNop())

	for i := 0; i < int(opts.MinRequests); i++ {
		_, err := client.Generate(context.Background(), "x")
		require.Error(t, err)
	}
	_, err := client.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int(opts.MinRequests), completer.calls, "open breaker does not call upstream")
}

func TestClient_CancelledCallsDoNotTripBreaker(t *testing.T) {
	completer := &fakeCompleter{reply: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	opts := DefaultOptions()
	client := NewClient(completer, opts, zap.NewNop())

	for i := 0; i < int(opts.MinRequests)+2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Generate(ctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, int(opts.MinRequests)+2, completer.calls)
}

func TestClient_Timeout(t *testing.T) {
	completer := &fakeCompleter{reply: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	opts := DefaultOptions()
	opts.Timeout = 10 * time.Millisecond
	client := NewClient(completer, opts, zap.NewNop())

	_, err := client.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
