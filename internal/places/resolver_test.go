package places

import (
	"reflect"
	"testing"

	"github.com/pathfinder-ai/backend/pkg/config"
)

func testPlaces() []config.PlaceConfig {
	return []config.PlaceConfig{
		{Name: "Puraran Beach", Lat: 13.8446, Lng: 124.3857, Type: "beach"},
		{Name: "Twin Rock Beach", Lat: 13.5567, Lng: 124.2842, Type: "beach"},
		{Name: "Twin Rock", Lat: 13.5570, Lng: 124.2840, Type: "landmark"},
		{Name: "Bote Lighthouse", Lat: 13.5936, Lng: 124.2206, Type: "landmark"},
		{Name: "Virac", Lat: 13.5847, Lng: 124.2322, Type: "town"},
	}
}

func newTestResolver() *Resolver {
	return NewResolver(testPlaces(), 20.0)
}

func TestExtractMentions(t *testing.T) {
	resolver := newTestResolver()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single mention",
			text: "How do I get to Puraran Beach?",
			want: []string{"Puraran Beach"},
		},
		{
			name: "case insensitive",
			text: "is BOTE LIGHTHOUSE open?",
			want: []string{"Bote Lighthouse"},
		},
		{
			name: "longest name wins over prefix",
			text: "Tell me about Twin Rock Beach",
			want: []string{"Twin Rock Beach", "Twin Rock"},
		},
		{
			name: "no mention",
			text: "What is the best food here?",
			want: nil,
		},
		{
			name: "partial word does not match",
			text: "I love viracosa",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.ExtractMentions(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractMentions(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMergeMentions(t *testing.T) {
	got := MergeMentions(
		[]string{"Virac", "Puraran Beach"},
		[]string{"Puraran Beach", "Bote Lighthouse"},
	)
	want := []string{"Virac", "Puraran Beach", "Bote Lighthouse"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeMentions() = %v, want %v", got, want)
	}
}

func TestDetectReference(t *testing.T) {
	resolver := newTestResolver()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "phrase before place",
			query: "what is near Virac?",
			want:  "Virac",
		},
		{
			name:  "phrase after place",
			query: "Virac is close to what beaches?",
			want:  "Virac",
		},
		{
			name:  "no proximity phrase",
			query: "tell me about Virac",
			want:  "",
		},
		{
			name:  "phrase too far from place",
			query: "near my hotel there is wifi, and separately I wonder a lot about wonderful Virac",
			want:  "",
		},
		{
			name:  "no place at all",
			query: "anything near me?",
			want:  "",
		},
		{
			name:  "ambiguous query resolves in configuration order",
			query: "beaches near Puraran Beach and by Bote Lighthouse",
			want:  "Puraran Beach",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.DetectReference(tt.query); got != tt.want {
				t.Errorf("DetectReference(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestResolveWithProximityFilter(t *testing.T) {
	resolver := newTestResolver()

	// Puraran Beach is about 33 km from Virac, beyond the 20 km limit; the
	// lighthouse and Twin Rock are well inside it.
	got := resolver.Resolve([]string{"Puraran Beach", "Bote Lighthouse", "Twin Rock Beach"}, "Virac")

	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
	}
	want := []string{"Bote Lighthouse", "Twin Rock Beach"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Resolve() kept %v, want %v", names, want)
	}
}

func TestResolveWithoutReference(t *testing.T) {
	resolver := newTestResolver()

	got := resolver.Resolve([]string{"Puraran Beach", "Unknown Spot", "Virac"}, "")

	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
	}
	want := []string{"Puraran Beach", "Virac"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Resolve() = %v, want %v", names, want)
	}
}

func TestFilterByProximityNilReference(t *testing.T) {
	list := []Place{{Name: "Virac", Lat: 13.5847, Lng: 124.2322}}
	got := FilterByProximity(list, nil, 20.0)
	if !reflect.DeepEqual(got, list) {
		t.Errorf("nil reference should pass the list through, got %v", got)
	}
}

func TestAllPreservesOrder(t *testing.T) {
	resolver := newTestResolver()
	all := resolver.All()
	if len(all) != len(testPlaces()) {
		t.Fatalf("All() returned %d places, want %d", len(all), len(testPlaces()))
	}
	for i, p := range testPlaces() {
		if all[i].Name != p.Name {
			t.Errorf("All()[%d] = %q, want %q", i, all[i].Name, p.Name)
		}
	}
}
