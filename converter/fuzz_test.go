package converter

import (
	"testing"
	"unicode/utf8"
)

func FuzzConvertHTML(f *testing.F) {
	seeds := []string{
		"",
		"<h1>Title</h1><p>Hello <strong>world</strong></p>",
		"<blockquote><p><strong>Warning:</strong> be careful</p></blockquote>",
		`<table><tr><th>A</th></tr><tr><td><ul><li>x</li></ul></td></tr></table>`,
		`<app-table pluginobject="{&quot;data&quot;:{&quot;contents&quot;:[[&quot;a&quot;]]}}"></app-table>`,
		`<div class="tabs"><div class="tab-header">A</div><div class="tab-pane"><pre><code>x</code></pre></div></div>`,
		`<div class="callout warning"><div class="callout-text"><blockquote>q</blockquote></div></div>`,
		"<ul><li>a<ul><li>b",
		"<p>first<p>second<hr><ol><li>one<li>two</ol>",
		"<a href='x>broken</a><img src=\"",
		"\x1a0\x1a\x1b1\x1b",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	conv, err := New(DefaultConfig())
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, html string) {
		if !utf8.ValidString(html) {
			t.Skip()
		}

		result, err := conv.Convert(html)
		if err != nil {
			t.Fatalf("Convert(%q) error: %v", html, err)
		}

		again, err := conv.Convert(html)
		if err != nil {
			t.Fatalf("second Convert(%q) error: %v", html, err)
		}
		if again.Markdown != result.Markdown {
			t.Fatalf("non-deterministic output for %q", html)
		}

		once := PostProcess(result.Markdown)
		if PostProcess(once) != once {
			t.Fatalf("PostProcess not idempotent for %q", result.Markdown)
		}
	})
}
