package stanza

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/tripraptomo/stanza/views"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes an image, resizes it down to maxImageWidth when it is
// wider, and encodes it as JPEG. Returns the slugified target filename and
// the encoded bytes.
func processImage(src io.Reader, originalName string) (string, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", nil, fmt.Errorf("encode jpeg: %w", err)
	}

	ext := filepath.Ext(originalName)
	name := Slugify(strings.TrimSuffix(originalName, ext)) + ".jpg"
	return name, buf.Bytes(), nil
}

func (e *Engine) uploadsDir() string {
	return filepath.Join(e.root, e.Config.StaticDir, uploadsSubdir)
}

// ensureUniqueFilename appends a counter if filename already exists in the
// uploads directory.
func (e *Engine) ensureUniqueFilename(filename string) string {
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(e.uploadsDir(), candidate)); os.IsNotExist(err) {
			return candidate
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

func (e *Engine) handleImageList(c echo.Context) error {
	if !IsEditor(c) {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}
	return e.renderImageList(c, c.QueryParam("msg"))
}

func (e *Engine) handleImageUpload(c echo.Context) error {
	if !IsEditor(c) {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	name, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	name = e.ensureUniqueFilename(name)

	if err := os.MkdirAll(e.uploadsDir(), 0o755); err != nil {
		return fmt.Errorf("stanza: create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.uploadsDir(), name), data, 0o644); err != nil {
		return fmt.Errorf("stanza: write image: %w", err)
	}
	return c.Redirect(http.StatusSeeOther, "/_stanza/admin/images/?msg=Uploaded+"+name)
}

func (e *Engine) handleImageDelete(c echo.Context) error {
	if !IsEditor(c) {
		return c.Redirect(http.StatusSeeOther, "/_stanza/admin/")
	}
	name := filepath.Base(c.FormValue("name"))
	if name == "" || name == "." {
		return c.String(http.StatusBadRequest, "Filename required")
	}
	if err := os.Remove(filepath.Join(e.uploadsDir(), name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/_stanza/admin/images/?msg=Deleted+"+name)
}

// renderImageList reads the uploads directory fresh on every view; the
// filesystem is the only source of truth for media.
func (e *Engine) renderImageList(c echo.Context, flash string) error {
	entries, err := os.ReadDir(e.uploadsDir())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	var imgs []views.Image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		imgs = append(imgs, views.Image{
			Name: entry.Name(),
			URL:  "/" + uploadsSubdir + "/" + entry.Name(),
			Size: views.FormatSize(info.Size()),
		})
	}
	sort.Slice(imgs, func(i, j int) bool { return imgs[i].Name < imgs[j].Name })
	return Render(c, views.Images(imgs, flash, CsrfToken(c)))
}
