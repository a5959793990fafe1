package ingest

import (
	"strings"
	"testing"
)

func TestParseHTML(t *testing.T) {
	html := `
	<html><body>
	<h1>Puraran Beach</h1>
	<p>Puraran Beach is famous for its surf break.</p>
	<p>The waves are best from August to October.</p>
	<h2>Maribina Falls</h2>
	<div>not a paragraph</div>
	<p>A short trek from the road in Bato.</p>
	<h2>Empty Section</h2>
	<h3>Is there an airport?</h3>
	<p>Virac airport serves daily flights.</p>
	</body></html>`

	records, err := ParseHTML(strings.NewReader(html), "attractions")
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ParseHTML() returned %d records, want 3", len(records))
	}

	first := records[0]
	if first.Question != "What can you tell me about Puraran Beach?" {
		t.Errorf("question = %q", first.Question)
	}
	if first.Answer != "Puraran Beach is famous for its surf break. The waves are best from August to October." {
		t.Errorf("answer = %q", first.Answer)
	}
	if first.Title != "Puraran Beach" || first.Topic != "attractions" {
		t.Errorf("title=%q topic=%q", first.Title, first.Topic)
	}

	if records[1].Answer != "A short trek from the road in Bato." {
		t.Errorf("second answer = %q", records[1].Answer)
	}

	// A heading already phrased as a question stays untouched.
	if records[2].Question != "Is there an airport?" {
		t.Errorf("third question = %q", records[2].Question)
	}
}

func TestParseHTMLNoContent(t *testing.T) {
	if _, err := ParseHTML(strings.NewReader("<html><body><p>stray text</p></body></html>"), "x"); err == nil {
		t.Error("ParseHTML() should fail with no heading/paragraph pairs")
	}
}
