package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/nfnt/resize"
)

const (
	DefaultWidth  = 500
	DefaultHeight = 200

	MaxWidth   = 600
	MaxHeight  = 300
	PenRadius  = 1.5
	dataPrefix = "data:image/png;base64,"

	// MaxPoints - предел точек во всех штрихах одной подписи.
	MaxPoints = 2000

	maxUploadSize = 5 << 20
)

var (
	ErrUnsupportedImage = errors.New("Format d'image non pris en charge")
	ErrTooManyPoints    = errors.New("Tracé de signature trop long")
)

var ink = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}

// Rasterize проверяет штрихи и возвращает подпись в виде data URL PNG.
func Rasterize(strokes []Stroke, width, height int) (string, error) {
	if !hasInk(strokes) {
		return "", ErrEmptyDrawing
	}
	n := 0
	for _, s := range strokes {
		n += len(s)
	}
	if n > MaxPoints {
		return "", ErrTooManyPoints
	}
	return EncodeDataURL(Render(strokes, width, height))
}

// Render рисует штрихи круглым пером на прозрачном холсте.
// Точки за пределами холста прижимаются к его границе.
func Render(strokes []Stroke, width, height int) image.Image {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	for _, s := range strokes {
		if len(s) == 1 {
			dot(img, clamp(s[0], width, height))
			continue
		}
		for i := 1; i < len(s); i++ {
			line(img, clamp(s[i-1], width, height), clamp(s[i], width, height))
		}
	}
	return img
}

func clamp(p Point, width, height int) Point {
	return Point{
		X: math.Max(0, math.Min(p.X, float64(width))),
		Y: math.Max(0, math.Min(p.Y, float64(height))),
	}
}

func line(img *image.RGBA, a, b Point) {
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	steps := int(math.Ceil(dist / (PenRadius / 2)))
	if steps == 0 {
		dot(img, a)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		dot(img, Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
	}
}

func dot(img *image.RGBA, p Point) {
	r := int(math.Ceil(PenRadius))
	cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := float64(x)-p.X, float64(y)-p.Y
			if dx*dx+dy*dy <= PenRadius*PenRadius && image.Pt(x, y).In(img.Rect) {
				img.SetRGBA(x, y, ink)
			}
		}
	}
}

// fit уменьшает изображение до MaxWidth x MaxHeight с сохранением пропорций.
func fit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= MaxWidth && b.Dy() <= MaxHeight {
		return img
	}
	return resize.Thumbnail(MaxWidth, MaxHeight, img, resize.Lanczos3)
}

// EncodeDataURL кодирует изображение в data URL формата PNG.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, fit(img)); err != nil {
		return "", fmt.Errorf("encode signature png: %w", err)
	}
	return dataPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeUpload читает загруженное изображение (png, jpeg, gif) и возвращает data URL PNG.
func DecodeUpload(r io.Reader) (string, error) {
	img, _, err := image.Decode(io.LimitReader(r, maxUploadSize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return EncodeDataURL(img)
}

// DecodeDataURL возвращает PNG-байты подписи из data URL.
func DecodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, dataPrefix) {
		return nil, ErrUnsupportedImage
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, dataPrefix))
}
