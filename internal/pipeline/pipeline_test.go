package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/pathfinder-ai/backend/internal/places"
	"github.com/pathfinder-ai/backend/pkg/config"
)

type mockFilter struct {
	flagged bool
}

func (m *mockFilter) Flagged(string) bool { return m.flagged }

type mockProtector struct {
	prefix string
}

func (m *mockProtector) Protect(_ context.Context, text string) string { return m.prefix + text }

type mockExtractor struct {
	topics []string
}

func (m *mockExtractor) Extract(string) []string { return m.topics }

type mockSearcher struct {
	fact      string
	facts     []string
	err       error
	lastMode  string
	gotTopics []string
}

func (m *mockSearcher) Search(_ context.Context, _ string) (string, error) {
	m.lastMode = "single"
	return m.fact, m.err
}

func (m *mockSearcher) SearchMany(_ context.Context, topicList []string, _ string, _ int) ([]string, error) {
	m.lastMode = "multi"
	m.gotTopics = topicList
	return m.facts, m.err
}

type mockResolver struct {
	mentions  map[string][]string
	reference string
	resolved  []places.Place
}

func (m *mockResolver) ExtractMentions(text string) []string { return m.mentions[text] }
func (m *mockResolver) DetectReference(string) string        { return m.reference }
func (m *mockResolver) Resolve(names []string, _ string) []places.Place {
	return m.resolved
}

type mockComposer struct {
	gotQuestion string
}

func (m *mockComposer) Compose(_ context.Context, question, fact string) string {
	m.gotQuestion = question
	return "composed: " + fact
}

func testConfig() (config.RAGConfig, config.ResponsesConfig) {
	rag := config.RAGConfig{
		SearchResults:       3,
		ConfidenceThreshold: 0.65,
		MultiTopicThreshold: 0.85,
		ResultsPerTopic:     3,
		SimilarityThreshold: 0.85,
	}
	replies := config.ResponsesConfig{
		Refusal:       "Please ask politely.",
		NoInformation: "I don't have information about that.",
		NotSure:       "I'm not sure about that.",
		NoTopicInfo:   "I don't have info about those topics",
	}
	return rag, replies
}

func newTestPipeline(filter *mockFilter, extractor *mockExtractor, searcher *mockSearcher, resolver *mockResolver) *Pipeline {
	rag, replies := testConfig()
	return New(filter, &mockProtector{}, extractor, searcher, resolver, &mockComposer{}, rag, replies)
}

func TestAskFlaggedPrompt(t *testing.T) {
	searcher := &mockSearcher{}
	p := newTestPipeline(&mockFilter{flagged: true}, &mockExtractor{}, searcher, &mockResolver{})

	result, err := p.Ask(context.Background(), "rude prompt")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !result.Flagged {
		t.Error("result should be flagged")
	}
	if result.Reply != "Please ask politely." {
		t.Errorf("reply = %q, want refusal", result.Reply)
	}
	if len(result.Places) != 0 {
		t.Errorf("flagged prompt should return no places, got %v", result.Places)
	}
	if searcher.lastMode != "" {
		t.Error("retrieval should not run for flagged prompts")
	}
}

func TestAskSingleTopic(t *testing.T) {
	searcher := &mockSearcher{fact: "Puraran Beach has surf."}
	resolver := &mockResolver{
		mentions: map[string][]string{
			"where to surf":           nil,
			"Puraran Beach has surf.": {"Puraran Beach"},
		},
		resolved: []places.Place{{Name: "Puraran Beach", Lat: 13.8446, Lng: 124.3857, Type: "beach"}},
	}
	p := newTestPipeline(&mockFilter{}, &mockExtractor{topics: []string{"beaches"}}, searcher, resolver)

	result, err := p.Ask(context.Background(), "where to surf")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if searcher.lastMode != "single" {
		t.Errorf("retrieval mode = %q, want single", searcher.lastMode)
	}
	if result.Reply != "composed: Puraran Beach has surf." {
		t.Errorf("reply = %q", result.Reply)
	}
	if len(result.Places) != 1 || result.Places[0].Name != "Puraran Beach" {
		t.Errorf("places = %v, want Puraran Beach", result.Places)
	}
	if !reflect.DeepEqual(result.Topics, []string{"beaches"}) {
		t.Errorf("topics = %v, want [beaches]", result.Topics)
	}
}

func TestAskMultiTopic(t *testing.T) {
	searcher := &mockSearcher{facts: []string{"Puraran has surf.", "Try the crab dishes."}}
	p := newTestPipeline(&mockFilter{}, &mockExtractor{topics: []string{"beaches", "food"}}, searcher, &mockResolver{})

	result, err := p.Ask(context.Background(), "surf and food?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if searcher.lastMode != "multi" {
		t.Errorf("retrieval mode = %q, want multi", searcher.lastMode)
	}
	if !reflect.DeepEqual(searcher.gotTopics, []string{"beaches", "food"}) {
		t.Errorf("searched topics = %v", searcher.gotTopics)
	}
	if result.Reply != "composed: Puraran has surf. Try the crab dishes." {
		t.Errorf("reply = %q, want joined facts", result.Reply)
	}
}

func TestAskMultiTopicNoFacts(t *testing.T) {
	searcher := &mockSearcher{facts: nil}
	p := newTestPipeline(&mockFilter{}, &mockExtractor{topics: []string{"beaches", "food"}}, searcher, &mockResolver{})

	result, err := p.Ask(context.Background(), "surf and food?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	// The no-topic-info reply is not a sentinel, so it still flows through
	// composition.
	if !strings.Contains(result.Reply, "I don't have info about those topics") {
		t.Errorf("reply = %q, want joined-topics fallback", result.Reply)
	}
}

func TestAskSentinelSkipsPlacesAndComposition(t *testing.T) {
	searcher := &mockSearcher{fact: "I'm not sure about that."}
	resolver := &mockResolver{
		resolved: []places.Place{{Name: "Should Not Appear"}},
	}
	p := newTestPipeline(&mockFilter{}, &mockExtractor{topics: []string{"general"}}, searcher, resolver)

	result, err := p.Ask(context.Background(), "mystery question")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if result.Reply != "I'm not sure about that." {
		t.Errorf("sentinel reply should pass through verbatim, got %q", result.Reply)
	}
	if len(result.Places) != 0 {
		t.Errorf("sentinel reply should carry no places, got %v", result.Places)
	}
}

func TestAskComposesWithRawPrompt(t *testing.T) {
	rag, replies := testConfig()
	searcher := &mockSearcher{fact: "Puraran Beach has surf."}
	composer := &mockComposer{}
	protector := &mockProtector{prefix: "translated: "}
	p := New(&mockFilter{}, protector, &mockExtractor{topics: []string{"beaches"}}, searcher, &mockResolver{}, composer, rag, replies)

	if _, err := p.Ask(context.Background(), "where to surf"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if composer.gotQuestion != "where to surf" {
		t.Errorf("composer received question %q, want the raw prompt", composer.gotQuestion)
	}
}

func TestAskSearchError(t *testing.T) {
	searcher := &mockSearcher{err: fmt.Errorf("index unavailable")}
	p := newTestPipeline(&mockFilter{}, &mockExtractor{topics: []string{"beaches"}}, searcher, &mockResolver{})

	if _, err := p.Ask(context.Background(), "where to surf"); err == nil {
		t.Error("Ask() should propagate retrieval errors")
	}
}
