package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hayeah/repocat/internal/workspace"
)

type extView struct {
	Ext     string
	Checked bool
}

type rowView struct {
	Path       string
	Name       string
	Indent     int
	IsDir      bool
	Expanded   bool
	Selectable bool
	Checked    bool
}

type page struct {
	Repo       string
	Input      string
	Message    string
	Notice     string
	Extensions []extView
	Rows       []rowView
	Selected   int
	Output     string
	Files      int
	Tokens     int
}

func newPage(snap workspace.Snapshot) page {
	p := page{
		Input:    snap.Input,
		Message:  snap.Message(),
		Notice:   snap.Notice,
		Selected: snap.State.Selected.Len(),
		Output:   snap.Output(),
	}
	if !snap.Repo.IsZero() {
		p.Repo = snap.Repo.String()
	}
	if snap.Result != nil {
		p.Files = len(snap.Result.Files)
		p.Tokens = snap.Result.Tokens
	}
	for _, ext := range snap.Extensions {
		p.Extensions = append(p.Extensions, extView{Ext: ext, Checked: snap.State.FilterHas(ext)})
	}
	for _, r := range snap.Rows() {
		name := r.Node.Name
		if r.Node.Path == "" {
			name = p.Repo
		}
		p.Rows = append(p.Rows, rowView{
			Path:       r.Node.Path,
			Name:       name,
			Indent:     r.Depth * 2,
			IsDir:      r.Node.IsDir(),
			Expanded:   r.Expanded,
			Selectable: r.Selectable,
			Checked:    r.Checked,
		})
	}
	return p
}

// Index renders the page. A ?repo= query loads that repository first,
// unless it is already the current one.
func (s *Server) Index(c *gin.Context) {
	ws := s.workspace(c)
	if input := c.Query("repo"); input != "" && input != ws.Snapshot().Input {
		s.report(ws.Load(c.Request.Context(), input))
	}
	c.HTML(http.StatusOK, "index.html", newPage(ws.Snapshot()))
}

func (s *Server) Load(c *gin.Context) {
	ws := s.workspace(c)
	s.report(ws.Load(c.Request.Context(), c.PostForm("repo")))
	back(c)
}

func (s *Server) Toggle(c *gin.Context) {
	ws := s.workspace(c)
	s.report(ws.ToggleFile(c.PostForm("path"), c.PostForm("on") == "1"))
	back(c)
}

func (s *Server) Extension(c *gin.Context) {
	ws := s.workspace(c)
	s.report(ws.CheckExtension(c.PostForm("ext"), c.PostForm("on") == "1"))
	back(c)
}

func (s *Server) Expand(c *gin.Context) {
	s.workspace(c).ToggleExpanded(c.PostForm("path"))
	back(c)
}

func (s *Server) Process(c *gin.Context) {
	ws := s.workspace(c)
	s.report(ws.Process(c.Request.Context()))
	back(c)
}

// Copy writes the output to the clipboard of the machine running the server.
func (s *Server) Copy(c *gin.Context) {
	s.report(s.workspace(c).Copy())
	back(c)
}

func (s *Server) Download(c *gin.Context) {
	snap := s.workspace(c).Snapshot()
	if snap.Result == nil {
		c.String(http.StatusNotFound, "nothing processed yet\n")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+snap.Repo.Owner+"-"+snap.Repo.Name+`.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(snap.Result.Text))
}

// report logs failures. The workspace already holds the message for the page.
func (s *Server) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, workspace.ErrSuperseded):
		s.log.Debug("request superseded")
	default:
		s.log.Info("action failed", "err", err)
	}
}

func back(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}
