package extract

import (
	"strings"
	"testing"
)

func TestFromHTMLPrefersMain(t *testing.T) {
	in := []byte(`<html><head><title>Acme | Home</title></head><body>
		<nav>Navigation junk</nav>
		<main><h1>Welcome</h1><p>We make anvils.</p></main>
		<footer>Copyright</footer>
	</body></html>`)
	p := FromHTML(in)
	if p.Title != "Acme | Home" {
		t.Fatalf("Title = %q", p.Title)
	}
	if !strings.Contains(p.Text, "We make anvils.") {
		t.Fatalf("Text = %q", p.Text)
	}
	if strings.Contains(p.Text, "Navigation junk") || strings.Contains(p.Text, "Copyright") {
		t.Fatalf("boilerplate leaked: %q", p.Text)
	}
}

func TestFromHTMLFallsBackToBody(t *testing.T) {
	p := FromHTML([]byte(`<html><body><p>Plain content.</p><script>var x=1;</script></body></html>`))
	if !strings.Contains(p.Text, "Plain content.") {
		t.Fatalf("Text = %q", p.Text)
	}
	if strings.Contains(p.Text, "var x=1") {
		t.Fatalf("script text leaked: %q", p.Text)
	}
}

func TestFromHTMLSkipsConsentBanners(t *testing.T) {
	in := []byte(`<html><body>
		<div class="cookie-consent">We value your privacy. Accept all cookies?</div>
		<div id="gdpr-box">Manage preferences</div>
		<p>Real content here.</p>
	</body></html>`)
	p := FromHTML(in)
	if strings.Contains(p.Text, "Accept all cookies") || strings.Contains(p.Text, "Manage preferences") {
		t.Fatalf("consent text leaked: %q", p.Text)
	}
	if !strings.Contains(p.Text, "Real content here.") {
		t.Fatalf("Text = %q", p.Text)
	}
}

func TestFromHTMLTidiesWhitespace(t *testing.T) {
	p := FromHTML([]byte("<html><body><p>a   b\t\tc</p><p></p><p></p><p>d</p></body></html>"))
	if strings.Contains(p.Text, "  ") {
		t.Fatalf("whitespace runs remain: %q", p.Text)
	}
	if strings.Contains(p.Text, "\n\n\n") {
		t.Fatalf("blank line runs remain: %q", p.Text)
	}
}

func TestFromHTMLListItems(t *testing.T) {
	p := FromHTML([]byte("<html><body><ul><li>one</li><li>two</li></ul></body></html>"))
	if !strings.Contains(p.Text, "one\n") || !strings.Contains(p.Text, "two") {
		t.Fatalf("list items should land on their own lines: %q", p.Text)
	}
}

func TestFromHTMLEmptyInput(t *testing.T) {
	p := FromHTML(nil)
	if p.Text != "" {
		t.Fatalf("Text = %q, want empty", p.Text)
	}
}
