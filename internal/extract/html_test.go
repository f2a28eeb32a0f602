package extract

import (
	"strings"
	"testing"
)

func TestHTMLStripsMarkup(t *testing.T) {
	html := `<html><head>
<style>body { color: red; }</style>
<script>var tracking = "pixel";</script>
</head><body>
<h1>Acme Corp</h1>
<p>Invoice Number: <b>INV-42</b></p>
<p>Total: $99.00</p>
</body></html>`

	text := HTML(html)

	if strings.Contains(text, "<") || strings.Contains(text, ">") {
		t.Fatalf("tags survived: %q", text)
	}
	if strings.Contains(text, "color: red") || strings.Contains(text, "tracking") {
		t.Fatalf("script/style content survived: %q", text)
	}
	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[0]) != "Acme Corp" {
		t.Fatalf("first line = %q, want %q", lines[0], "Acme Corp")
	}
	if !strings.Contains(text, "Invoice Number:") || !strings.Contains(text, "INV-42") {
		t.Fatalf("body text lost: %q", text)
	}
	if !strings.Contains(text, "Total: $99.00") {
		t.Fatalf("amount line lost: %q", text)
	}
}

func TestHTMLDecodesCommonEntities(t *testing.T) {
	text := HTML(`<p>Smith &amp; Sons</p><p>Total:&nbsp;$5.00</p><p>&lt;note&gt; &quot;paid&quot;</p>`)

	for _, want := range []string{"Smith & Sons", "Total: $5.00", `<note> "paid"`} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
}

func TestHTMLNormalizesWhitespace(t *testing.T) {
	text := HTML("<div>a</div>\n\n\n<div>b\t\t c</div>")
	if text != "a\nb c" {
		t.Fatalf("HTML = %q, want %q", text, "a\nb c")
	}
}

func TestHTMLPlainTextPassesThrough(t *testing.T) {
	if got := HTML("no markup here"); got != "no markup here" {
		t.Fatalf("HTML = %q, want input unchanged", got)
	}
}
