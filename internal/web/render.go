package web

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// elem writes <tag class="...">text</tag>.
func (h *htmlWriter) elem(tag, class, content string) {
	if class != "" {
		h.rawf(`<%s class="%s">`, tag, templ.EscapeString(class))
	} else {
		h.rawf("<%s>", tag)
	}
	h.text(content)
	h.rawf("</%s>", tag)
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

func table(h *htmlWriter, headers []string, rows [][]string) {
	h.raw(`<table class="data"><thead><tr>`)
	for _, col := range headers {
		h.elem("th", "", col)
	}
	h.raw("</tr></thead><tbody>")
	for _, row := range rows {
		h.raw("<tr>")
		for _, cell := range row {
			h.elem("td", "", cell)
		}
		h.raw("</tr>")
	}
	h.raw("</tbody></table>")
}

func notice(h *htmlWriter, msg string) {
	if msg != "" {
		h.elem("p", "notice", msg)
	}
}

// euros formats an amount with spaces between thousands.
func euros(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(int64(v+0.5), 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + " €"
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " %"
}
