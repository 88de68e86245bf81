// handlers.go — HTTP handlers for templates, photos, posters and sharing.
package server

import (
	"bytes"
	"image"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/xob0t/GoPoster/pkg/compositor"
	"github.com/xob0t/GoPoster/pkg/generator"
	"github.com/xob0t/GoPoster/pkg/layout"
)

const (
	maxRenderSize  = 4096
	maxPhotoSide   = 2160
	photoQuality   = 90
	defaultQRSize  = 256
	minQRSize      = 64
	maxQRSize      = 1024
	photoFormField = "photo"
)

// ── Health ──

func (s *Server) health(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"templates": len(s.templates.List("")),
		"assets":    s.assets.Len(),
		"renders":   s.comp.Stats(),
	}
	if s.cache != nil {
		resp["cache"] = s.cache.Stats()
	}
	c.JSON(http.StatusOK, resp)
}

// ── Templates ──

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.templates.Categories()})
}

func (s *Server) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": s.templates.List(c.Query("category"))})
}

// reloadTemplates rereads the templates directory. Replaced templates drop
// their cached backgrounds.
func (s *Server) reloadTemplates(c *gin.Context) {
	n, warnings, err := s.templates.LoadDir(s.cfg.Templates.Dir, s.cfg.NormalizeOptions())
	if err != nil {
		s.fail(c, err)
		return
	}
	for _, w := range warnings {
		s.log.Warn().Msg(w)
	}
	s.warnMissingFonts()
	s.log.Info().Int("templates", n).Str("dir", s.cfg.Templates.Dir).Msg("templates reloaded")
	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"loaded": n, "warnings": warnings})
}

func (s *Server) getTemplate(c *gin.Context) {
	tpl, err := s.templates.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

type layoutBody struct {
	Content   layout.Content         `json:"content"`
	Size      int                    `json:"size"`
	Estimate  bool                   `json:"estimate"`
	Overrides *layout.DebugOverrides `json:"overrides,omitempty"`
}

// layoutTemplate returns the zone layout without rasterizing, for clients
// that draw their own preview.
func (s *Server) layoutTemplate(c *gin.Context) {
	var body layoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("decode request: %v", err))
		return
	}
	tpl, err := s.templates.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	size, err := s.targetSize(body.Size, s.cfg.Render.PreviewSize)
	if err != nil {
		s.fail(c, err)
		return
	}

	var m layout.Measurer = layout.EstimateMeasurer{}
	if !body.Estimate {
		faces := layout.NewFaceMeasurer(s.fonts)
		defer faces.Close()
		m = faces
	}
	zones, err := s.comp.Calculator(m).LayoutWith(tpl, body.Content, size, body.Overrides)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templateId": tpl.ID, "size": size, "zones": zones})
}

// ── Rendering ──

type renderBody struct {
	TemplateID string                 `json:"templateId"`
	Content    layout.Content         `json:"content"`
	Size       int                    `json:"size"`
	Mode       compositor.Mode        `json:"mode"`
	Overrides  *layout.DebugOverrides `json:"overrides,omitempty"`
}

func (s *Server) render(c *gin.Context) {
	var body renderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("decode request: %v", err))
		return
	}
	req, err := s.renderRequest(body.TemplateID, body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	if req.TargetSize, err = s.targetSize(body.Size, s.cfg.Render.FinalSize); err != nil {
		s.fail(c, err)
		return
	}
	req.Mode = body.Mode
	if req.Mode == "" {
		req.Mode = compositor.ModeFinal
	}
	req.Overrides = body.Overrides

	data, res, err := s.comp.RenderPNG(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("X-Degraded-Zones", strconv.Itoa(len(res.Degraded)))
	c.Data(http.StatusOK, "image/png", data)
}

type posterBody struct {
	TemplateID string         `json:"templateId"`
	Content    layout.Content `json:"content"`
}

// generatePoster renders the preview and final sizes and stores both.
func (s *Server) generatePoster(c *gin.Context) {
	var body posterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("decode request: %v", err))
		return
	}
	req, err := s.renderRequest(body.TemplateID, body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}

	preview, final, err := s.comp.RenderSet(c.Request.Context(), req, s.cfg.Render.PreviewSize, s.cfg.Render.FinalSize)
	if err != nil {
		s.fail(c, err)
		return
	}
	previewID := s.assets.Put(preview, generator.ContentType(".png"))
	finalID := s.assets.Put(final, generator.ContentType(".png"))
	s.log.Info().Str("template", req.Template.ID).Str("preview", previewID).Str("final", finalID).
		Msg("poster generated")

	c.JSON(http.StatusOK, gin.H{
		"previewId":  previewID,
		"finalId":    finalID,
		"previewUrl": s.assetURL(previewID),
		"finalUrl":   s.assetURL(finalID),
	})
}

func (s *Server) renderRequest(templateID string, content layout.Content) (compositor.RenderRequest, error) {
	if strings.TrimSpace(templateID) == "" {
		return compositor.RenderRequest{}, badRequest("templateId is required")
	}
	if err := s.checkPhotoRef(content.PhotoURL); err != nil {
		return compositor.RenderRequest{}, err
	}
	tpl, err := s.templates.Get(templateID)
	if err != nil {
		return compositor.RenderRequest{}, err
	}
	return compositor.RenderRequest{Template: tpl, Content: content}, nil
}

// checkPhotoRef keeps client-supplied photos to uploaded assets and URLs on
// the configured photo hosts; local paths are reserved for template
// backgrounds.
func (s *Server) checkPhotoRef(ref string) error {
	if ref == "" || strings.HasPrefix(ref, compositor.AssetScheme) {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return badRequest("photoUrl must be an uploaded asset or an http(s) URL")
	}
	host := u.Hostname()
	for _, h := range s.cfg.Server.PhotoHosts {
		if strings.EqualFold(h, host) {
			return nil
		}
	}
	return badRequest("photo host %q is not allowed; upload the photo instead", host)
}

func (s *Server) targetSize(requested, def int) (int, error) {
	if requested == 0 {
		return def, nil
	}
	if requested < 0 || requested > maxRenderSize {
		return 0, badRequest("size must be between 1 and %d", maxRenderSize)
	}
	return requested, nil
}

// ── Photos ──

func (s *Server) uploadPhoto(c *gin.Context) {
	if s.cfg.Server.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)
	}
	fh, err := c.FormFile(photoFormField)
	if err != nil {
		s.fail(c, badRequest("no %q file uploaded: %v", photoFormField, err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, badRequest("read upload: %v", err))
		return
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		s.fail(c, badRequest("only image files are allowed, got %s", ct))
		return
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		s.fail(c, badRequest("decode photo: %v", err))
		return
	}
	if b := img.Bounds(); b.Dx() > maxPhotoSide || b.Dy() > maxPhotoSide {
		img = imaging.Fit(img, maxPhotoSide, maxPhotoSide, imaging.Lanczos)
	}
	s.storePhoto(c, img)
}

type cropBody struct {
	PhotoURL string `json:"photoUrl"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// cropPhoto cuts a rectangle out of an uploaded photo and stores it as a new
// asset. The original stays available.
func (s *Server) cropPhoto(c *gin.Context) {
	var body cropBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("decode request: %v", err))
		return
	}
	if !strings.HasPrefix(body.PhotoURL, compositor.AssetScheme) {
		s.fail(c, badRequest("photoUrl must reference an uploaded photo"))
		return
	}
	img, err := compositor.FetchImage(c.Request.Context(), s.assets, body.PhotoURL)
	if err != nil {
		s.fail(c, err)
		return
	}

	rect := image.Rect(body.X, body.Y, body.X+body.Width, body.Y+body.Height)
	if body.Width <= 0 || body.Height <= 0 || !rect.In(img.Bounds()) {
		s.fail(c, badRequest("crop %v outside photo bounds %v", rect, img.Bounds()))
		return
	}
	s.storePhoto(c, imaging.Crop(img, rect))
}

func (s *Server) storePhoto(c *gin.Context, img image.Image) {
	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ".jpg", generator.Config{Image: img, Quality: photoQuality}); err != nil {
		s.fail(c, err)
		return
	}
	id := s.assets.Put(buf.Bytes(), generator.ContentType(".jpg"))
	b := img.Bounds()
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"photoUrl": compositor.Ref(id),
		"url":      s.assetURL(id),
		"width":    b.Dx(),
		"height":   b.Dy(),
	})
}

// ── Assets ──

func (s *Server) getAsset(c *gin.Context) {
	data, ct, ok := s.assets.Get(c.Param("id"))
	if !ok {
		s.fail(c, compositor.ErrAssetNotFound)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, ct, data)
}

func (s *Server) deleteAsset(c *gin.Context) {
	id := c.Param("id")
	if _, _, ok := s.assets.Get(id); !ok {
		s.fail(c, compositor.ErrAssetNotFound)
		return
	}
	s.assets.Delete(id)
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (s *Server) assetURL(id string) string {
	return strings.TrimRight(s.cfg.Server.PublicURL, "/") + "/api/assets/" + id
}

// ── Sharing ──

// shareQR returns a PNG QR code for the "url" query parameter.
func (s *Server) shareQR(c *gin.Context) {
	text := c.Query("url")
	if text == "" {
		s.fail(c, badRequest("url is required"))
		return
	}
	size := defaultQRSize
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(c, badRequest("size: %v", err))
			return
		}
		size = min(max(n, minQRSize), maxQRSize)
	}
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
