package web

import (
	"net/http"
	"strings"

	"gjira/internal/ops"
)

// Handlers holds dependencies for web UI handlers.
type Handlers struct {
	env      *ops.Env
	renderer *Renderer
}

// HandleHome renders the empty preview form.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, "preview", PreviewPageData{
		PageData: h.pageData("Preview", "preview"),
	})
}

// HandlePreview fetches a change, renders the comment without posting it,
// and shows the extracted context, the comment text, and the ADF payload.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	tmpl := r.URL.Query().Get("template")

	if url == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	out, err := ops.Comment(r.Context(), h.env, ops.CommentInput{
		URL:      url,
		Key:      key,
		Template: tmpl,
		DryRun:   true,
	})
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	h.renderer.renderPage(w, "preview", PreviewPageData{
		PageData:     h.pageData("Preview", "preview"),
		URL:          url,
		Key:          key,
		Template:     tmpl,
		Context:      out.Context,
		Comment:      out,
		RenderedHTML: renderMarkdown(out.Text),
		ADFJSON:      adfJSON(out.Body),
	})
}

// HandleHistory renders the recent run list.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	out, err := ops.History(h.env, ops.HistoryInput{Limit: ops.MaxHistoryLimit})
	if err != nil {
		h.renderer.renderError(w, err)
		return
	}

	h.renderer.renderPage(w, "history", HistoryPageData{
		PageData: h.pageData("History", "history"),
		Runs:     out.Runs,
	})
}

func (h *Handlers) pageData(title, nav string) PageData {
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
	}
}
