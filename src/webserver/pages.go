package webserver

import (
	"embed"
	"html/template"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/config"
	"github.com/stake-plus/ecp-share/src/editor"
	"github.com/stake-plus/ecp-share/src/form"
	"github.com/stake-plus/ecp-share/src/indexer"
	"github.com/stake-plus/ecp-share/src/prefill"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	cfg       *config.Config
	dir       *indexer.Directory
	templates *template.Template
}

func newPages(cfg *config.Config, dir *indexer.Directory) pages {
	return pages{
		cfg:       cfg,
		dir:       dir,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

type metadataRow struct {
	comments.MetadataEntry
	Duplicate bool
}

// Form renders the comment form with the deep link applied. Channels come
// from the last directory load; the first request triggers one. Posting
// happens through the CLI, so the page links the draft rather than submitting.
func (p pages) Form(c *gin.Context) {
	st := form.New()
	st.ApplyPrefill(prefill.Parse(c.Request.URL.Query()))
	st.AttachEditor(editor.New())

	list := p.dir.Channels()
	if len(list) == 0 {
		list, _ = p.dir.Load(c.Request.Context())
	}
	st.ChannelsLoaded(list)

	dups := st.DuplicateKeys()
	var rows []metadataRow
	for i, e := range st.Metadata() {
		rows = append(rows, metadataRow{MetadataEntry: e, Duplicate: slices.Contains(dups, i)})
	}

	data := gin.H{
		"ProjectID":      p.cfg.WalletConnectProjectID,
		"ChainID":        p.cfg.ChainID,
		"CommentManager": p.cfg.CommentManager.Hex(),
		"AppSigner":      p.cfg.AppSigner.Hex(),
		"TargetURI":      st.TargetURI(),
		"ChannelID":      st.ChannelID(),
		"Channels":       st.Channels(),
		"Content":        st.Editor().Content(),
		"Metadata":       rows,
		"MetadataTypes":  comments.MetadataTypes,
		"Dev":            st.DevMode(),
		"Loading":        p.dir.Loading(),
		"ShareURL":       prefill.ShareURL(requestOrigin(c)+"/", st.Draft()),
	}
	c.HTML(http.StatusOK, "form.html", data)
}

func (p pages) Docs(c *gin.Context) {
	c.HTML(http.StatusOK, "docs.html", gin.H{
		"Origin":        requestOrigin(c),
		"MetadataTypes": comments.MetadataTypes,
	})
}
