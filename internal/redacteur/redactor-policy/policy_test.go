package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "script removed",
			in:   `<p>Bonjour<script>alert(1)</script></p>`,
			want: `<p>Bonjour</p>`,
		},
		{
			name: "block container kept",
			in:   `<div data-type="formula" data-block-id="f1" class="block block-formula"><span class="formula-result">5,00</span></div>`,
			want: `<div data-type="formula" data-block-id="f1" class="block block-formula"><span class="formula-result">5,00</span></div>`,
		},
		{
			name: "unknown block type dropped",
			in:   `<div data-type="iframe">x</div>`,
			want: `<div>x</div>`,
		},
		{
			name: "comment highlight kept",
			in:   `<span class="comment-highlight" data-comment-id="c-1">texte</span>`,
			want: `<span class="comment-highlight" data-comment-id="c-1">texte</span>`,
		},
		{
			name: "signature image data uri",
			in:   `<img src="data:image/png;base64,iVBORw0KGgo=" alt="Signature">`,
			want: `<img src="data:image/png;base64,iVBORw0KGgo=" alt="Signature">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeComment(t *testing.T) {
	assert.Equal(t, "Voir <b>ici</b>", SanitizeComment("  Voir &lt;b&gt;ici&lt;/b&gt;  "))
	assert.Equal(t, "Voir ici", SanitizeComment("<p>Voir <b>ici</b></p>"))
}

func TestFlatten(t *testing.T) {
	in := `<p>Le <span data-type="variable" data-attrs="{}">12/03/2024</span></p><div data-type="chart" data-attrs="{&#34;id&#34;:&#34;c1&#34;}" data-block-id="c1"><p>x</p></div>`
	assert.Equal(t, `<p>Le 12/03/2024</p><div data-type="chart" data-block-id="c1"><p>x</p></div>`, Flatten(in))
	assert.Empty(t, Flatten(""))
}
