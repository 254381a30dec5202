package fakepuush

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	statusOK           = "0"
	statusFailed       = "-1"
	statusHashMismatch = "-3"

	thumbnailSize = 100
)

// Handler serves the puush API endpoints from a Store.
type Handler struct {
	store  *Store
	logger *logrus.Logger
}

// NewHandler creates a new handler over store.
func NewHandler(store *Store, logger *logrus.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Auth handles POST /api/auth with either k or e and p.
func (h *Handler) Auth(c *gin.Context) {
	var (
		user *User
		ok   bool
	)
	if key := c.PostForm("k"); key != "" {
		user, ok = h.store.userByKey(key)
	} else {
		user, ok = h.store.userByLogin(c.PostForm("e"), c.PostForm("p"))
	}
	if !ok {
		c.String(http.StatusOK, statusFailed)
		return
	}

	premium := "0"
	if user.Premium {
		premium = "1"
	}
	c.String(http.StatusOK, "%s,%s,%s,%d", premium, user.APIKey, user.Expires, h.store.usage(user.APIKey))
}

// Upload handles POST /api/up.
func (h *Handler) Upload(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	header, err := c.FormFile("f")
	if err != nil {
		h.logger.Warnf("upload without file part: %v", err)
		c.String(http.StatusOK, statusFailed)
		return
	}
	fh, err := header.Open()
	if err != nil {
		c.String(http.StatusOK, statusFailed)
		return
	}
	defer fh.Close()

	data, err := io.ReadAll(fh)
	if err != nil {
		c.String(http.StatusOK, statusFailed)
		return
	}

	if sum := c.PostForm("c"); sum != "" && !strings.EqualFold(sum, md5Hex(data)) {
		h.logger.Warnf("hash mismatch for %q", header.Filename)
		c.String(http.StatusOK, statusHashMismatch)
		return
	}

	f := h.store.add(user.APIKey, header.Filename, data)
	h.logger.Infof("stored %q as %s (%d bytes)", f.filename, f.id, len(data))
	c.String(http.StatusOK, "%s,%s,%s,%d", statusOK, fileURL(c, f.id), f.id, len(data))
}

// Delete handles POST /api/del.
func (h *Handler) Delete(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	if !h.store.remove(user.APIKey, c.PostForm("i")) {
		c.String(http.StatusOK, statusFailed)
		return
	}
	c.String(http.StatusOK, statusOK)
}

// Thumbnail handles POST /api/thumb. Unknown files get an empty body, as the
// real service does.
func (h *Handler) Thumbnail(c *gin.Context) {
	user, ok := h.store.userByKey(c.PostForm("k"))
	if !ok {
		c.Status(http.StatusOK)
		return
	}
	f, ok := h.store.get(user.APIKey, c.PostForm("i"))
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	img, err := renderThumbnail(f.data)
	if err != nil {
		h.logger.Errorf("thumbnail for %s: %v", f.id, err)
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// History handles POST /api/hist.
func (h *Handler) History(c *gin.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var b strings.Builder
	b.WriteString(statusOK)
	for _, f := range h.store.recent(user.APIKey) {
		fmt.Fprintf(&b, "\n%s,%s,%s,%s,%d,0",
			f.id, f.uploaded.Format("2006-01-02 15:04:05"), fileURL(c, f.id), f.filename, f.views)
	}
	b.WriteString("\n")
	c.String(http.StatusOK, "%s", b.String())
}

// View handles GET /p/:id and serves the uploaded bytes.
func (h *Handler) View(c *gin.Context) {
	data, ok := h.store.View(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// user resolves the k field, answering -1 itself when the key is unknown.
func (h *Handler) user(c *gin.Context) (*User, bool) {
	user, ok := h.store.userByKey(c.PostForm("k"))
	if !ok {
		c.String(http.StatusOK, statusFailed)
		return nil, false
	}
	return user, true
}

func fileURL(c *gin.Context, id string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/p/" + id
}

// renderThumbnail draws a flat square whose color is derived from data.
func renderThumbnail(data []byte) ([]byte, error) {
	sum := md5Hex(data)
	r, _ := strconv.ParseUint(sum[0:2], 16, 8)
	g, _ := strconv.ParseUint(sum[2:4], 16, 8)
	b, _ := strconv.ParseUint(sum[4:6], 16, 8)
	fill := color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, thumbnailSize, thumbnailSize))
	for y := 0; y < thumbnailSize; y++ {
		for x := 0; x < thumbnailSize; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
