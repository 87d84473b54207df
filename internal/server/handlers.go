package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/domain"
	"ingredient-scanner/internal/image"
	"ingredient-scanner/internal/region"
	"ingredient-scanner/internal/wordlist"
	"ingredient-scanner/pkg/geometry"
)

var errSessionNotFound = errors.New("session not found")

func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/sessions", s.createSessionHandler)
	sessions := r.Group("/sessions/:id")
	sessions.Use(s.sessionMiddleware())
	sessions.GET("", s.getSessionHandler)
	sessions.DELETE("", s.deleteSessionHandler)
	sessions.PUT("/canvas", s.setCanvasHandler)
	sessions.POST("/gestures", s.gestureHandler)
	sessions.PUT("/crop", s.setCropHandler)
	sessions.DELETE("/crop", s.resetCropHandler)
	sessions.PUT("/mode", s.setModeHandler)
	sessions.POST("/scan", s.scanHandler)
	sessions.POST("/rescan", s.rescanHandler)
	sessions.GET("/processed.png", s.processedHandler)

	r.GET("/lists", s.getListsHandler)
	r.POST("/lists/reset", s.resetListsHandler)
	r.POST("/lists/:category", s.addPhraseHandler)
	r.DELETE("/lists/:category/:index", s.removePhraseHandler)
}

func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.session(c.Param("id"))
		if !ok {
			writeError(c, errSessionNotFound)
			c.Abort()
			return
		}
		c.Set("session", sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *app.Session {
	return c.MustGet("session").(*app.Session)
}

type imageView struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	MIME   string `json:"mime"`
	Format string `json:"format"`
}

type sessionView struct {
	ID        string            `json:"id,omitempty"`
	Image     *imageView        `json:"image,omitempty"`
	Mode      image.Mode        `json:"mode"`
	ModeName  string            `json:"mode_name"`
	Selection *region.Selection `json:"selection,omitempty"`
	Canvas    geometry.Size     `json:"canvas"`
	HasCrop   bool              `json:"has_crop"`
	Result    *app.ScanResult   `json:"result,omitempty"`
}

func viewOf(id string, sess *app.Session) sessionView {
	v := sessionView{
		ID:       id,
		Mode:     sess.Mode(),
		ModeName: sess.Mode().String(),
		Canvas:   sess.Editor().CanvasSize(),
		HasCrop:  sess.Cropped() != nil,
		Result:   sess.LastResult(),
	}
	if snap := sess.Original(); snap != nil {
		v.Image = &imageView{Width: snap.Width(), Height: snap.Height(), MIME: snap.MIME, Format: snap.Format}
	}
	if sel, ok := sess.Editor().Selection(); ok {
		v.Selection = &sel
	}
	return v
}

func (s *Server) createSessionHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	fh, err := c.FormFile("image")
	if err != nil {
		writeError(c, domain.InvalidInput("multipart field \"image\" is required", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, domain.InvalidInput("read upload", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, domain.InvalidInput("read upload", err))
		return
	}
	if len(data) == 0 {
		writeError(c, domain.InvalidInput("empty upload", nil))
		return
	}

	snap, err := image.DecodeBytes(data)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusUnsupportedMediaType, errorBody(err))
			return
		}
		writeError(c, err)
		return
	}
	snap.Path = fh.Filename

	sess := s.newSession()
	sess.SetCanvasSize(snap.Size)
	sess.SetImage(snap)
	id := s.addSession(sess)
	c.JSON(http.StatusCreated, viewOf(id, sess))
}

func (s *Server) getSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(c.Param("id"), sessionFrom(c)))
}

func (s *Server) deleteSessionHandler(c *gin.Context) {
	s.removeSession(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type sizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) setCanvasHandler(c *gin.Context) {
	var req sizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.InvalidInput("invalid canvas size", err))
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(c, domain.InvalidInput("canvas width and height must be positive", nil))
		return
	}
	sess := sessionFrom(c)
	sess.SetCanvasSize(geometry.NewSize(req.Width, req.Height))
	c.JSON(http.StatusOK, sess.Editor().Frame())
}

type gestureRequest struct {
	Phase   string  `json:"phase" binding:"required"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Touch   bool    `json:"touch"`
	Contact int     `json:"contact"`
}

type gestureResponse struct {
	Accepted bool          `json:"accepted"`
	Cursor   region.Cursor `json:"cursor"`
	Frame    region.Frame  `json:"frame"`
}

func (s *Server) gestureHandler(c *gin.Context) {
	var req gestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.InvalidInput("invalid gesture", err))
		return
	}
	in := region.Input{Point: geometry.NewPoint2D(req.X, req.Y), Kind: region.Pointer, Contact: req.Contact}
	if req.Touch {
		in.Kind = region.Touch
	}

	ed := sessionFrom(c).Editor()
	var accepted bool
	switch req.Phase {
	case "begin", "start", "down":
		accepted = ed.Begin(in)
	case "move", "update":
		accepted = ed.Update(in)
	case "end", "up":
		accepted = ed.End(in)
	case "cancel":
		ed.Cancel()
		accepted = true
	case "hover":
		accepted = true
	default:
		writeError(c, domain.InvalidInput("unknown gesture phase "+strconv.Quote(req.Phase), nil))
		return
	}

	c.JSON(http.StatusOK, gestureResponse{
		Accepted: accepted,
		Cursor:   ed.CursorFor(in.Point, in.Kind),
		Frame:    ed.Frame(),
	})
}

type cropRequest struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	CanvasWidth  float64 `json:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height"`
}

func (s *Server) setCropHandler(c *gin.Context) {
	var req cropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.InvalidInput("invalid crop", err))
		return
	}
	sess := sessionFrom(c)
	if req.CanvasWidth > 0 && req.CanvasHeight > 0 {
		sess.SetCanvasSize(geometry.NewSize(req.CanvasWidth, req.CanvasHeight))
	}
	sess.Editor().SetSelection(geometry.NewRect(req.X, req.Y, req.Width, req.Height))
	c.JSON(http.StatusOK, viewOf(c.Param("id"), sess))
}

func (s *Server) resetCropHandler(c *gin.Context) {
	sess := sessionFrom(c)
	sess.ResetCrop()
	c.JSON(http.StatusOK, viewOf(c.Param("id"), sess))
}

func (s *Server) setModeHandler(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.InvalidInput("mode is required", err))
		return
	}
	m, err := image.ParseMode(req.Mode)
	if err != nil {
		writeError(c, domain.InvalidInput("invalid mode", err))
		return
	}
	sess := sessionFrom(c)
	if err := sess.SetMode(m); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(c.Param("id"), sess))
}

// scanHandler scans the committed selection when there is one, otherwise
// the kept crop or whole image.
func (s *Server) scanHandler(c *gin.Context) {
	sess := sessionFrom(c)
	var (
		res *app.ScanResult
		err error
	)
	if _, ok := sess.Editor().Selection(); ok {
		res, err = sess.ScanSelection(c.Request.Context())
	} else {
		res, err = sess.Scan(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) rescanHandler(c *gin.Context) {
	res, err := sessionFrom(c).Rescan(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) processedHandler(c *gin.Context) {
	img := sessionFrom(c).Processed()
	if img == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no processed image yet"})
		return
	}
	var buf bytes.Buffer
	if err := image.EncodePNG(&buf, img); err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type listsView struct {
	Suspicious []string `json:"suspicious"`
	Prohibited []string `json:"prohibited"`
}

func (s *Server) listsView() listsView {
	sus, pro := s.lists.Snapshot()
	return listsView{Suspicious: sus, Prohibited: pro}
}

func (s *Server) getListsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.listsView())
}

func (s *Server) addPhraseHandler(c *gin.Context) {
	cat, err := wordlist.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var req struct {
		Phrase string `json:"phrase"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.InvalidInput("invalid body", err))
		return
	}
	if wordlist.NormalizePhrase(req.Phrase) == "" {
		writeError(c, domain.InvalidInput("phrase must not be empty", nil))
		return
	}

	added, err := s.lists.Add(c.Request.Context(), cat, req.Phrase)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"added": added, "list": s.lists.Get(cat)})
}

func (s *Server) removePhraseHandler(c *gin.Context) {
	cat, err := wordlist.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c, domain.InvalidInput("index must be an integer", err))
		return
	}
	removed, err := s.lists.RemoveAt(c.Request.Context(), cat, idx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "list": s.lists.Get(cat)})
}

func (s *Server) resetListsHandler(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	_ = c.ShouldBindJSON(&req)
	if !req.Confirm {
		writeError(c, domain.InvalidInput("reset requires {\"confirm\": true}", nil))
		return
	}
	if err := s.lists.ResetDefaults(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.listsView())
}
