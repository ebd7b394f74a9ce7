package signature

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawThenSave(t *testing.T) {
	b := &edtypes.Signature{ID: "s1", Signatory: "Jeanne Martin", Role: "Directrice", Required: true}
	assert.Equal(t, RequiredWarning, Warning(b))

	p := NewPad(b, 300, 100)
	require.Equal(t, Unsigned, p.State())

	require.True(t, p.PointerDown(Point{X: 10, Y: 10}))
	assert.Equal(t, Drawing, p.State())
	p.PointerMove(Point{X: 50, Y: 40})
	p.PointerUp()
	p.PointerMove(Point{X: 90, Y: 90}) // указатель отпущен, точка игнорируется

	p.PointerDown(Point{X: 60, Y: 10})
	p.PointerMove(Point{X: 120, Y: 60})
	p.PointerLeave()

	require.Len(t, p.Strokes(), 2)
	assert.Len(t, p.Strokes()[0], 2)

	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	require.NoError(t, p.Save(b, "203.0.113.7", now))

	assert.Equal(t, Signed, p.State())
	assert.True(t, strings.HasPrefix(b.Signature, "data:image/png;base64,"))
	require.NotNil(t, b.SignedAt)
	assert.Equal(t, "2026-05-04T08:00:00Z", b.SignedAt.Format(time.RFC3339))
	assert.Equal(t, "203.0.113.7", b.IPAddress)
	assert.Equal(t, "Jeanne Martin", b.Signatory)
	assert.Empty(t, Warning(b))

	raw, err := DecodeDataURL(b.Signature)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())

	assert.False(t, p.PointerDown(Point{X: 1, Y: 1}))
	assert.ErrorIs(t, p.Save(b, "x", now), ErrAlreadySigned)
}

func TestClearKeepsSavedSignature(t *testing.T) {
	b := &edtypes.Signature{ID: "s1"}
	p := NewPad(b, 0, 0)

	p.PointerDown(Point{X: 1, Y: 1})
	p.Clear()
	assert.Equal(t, Unsigned, p.State())
	assert.Empty(t, p.Strokes())
	assert.ErrorIs(t, p.Save(b, "ip", time.Now()), ErrEmptyDrawing)
	assert.False(t, b.Signed())

	signed := &edtypes.Signature{ID: "s2", Signature: "data:image/png;base64,AAAA"}
	p = NewPad(signed, 0, 0)
	p.Clear()
	assert.Equal(t, Signed, p.State())
	assert.Equal(t, "data:image/png;base64,AAAA", signed.Signature)
}

func TestRemove(t *testing.T) {
	b := &edtypes.Signature{ID: "s1"}
	require.NoError(t, Sign(b, []Stroke{{{X: 1, Y: 1}, {X: 20, Y: 20}}}, 50, 50, "ip", time.Now()))
	require.True(t, b.Signed())

	p := NewPad(b, 50, 50)
	p.Remove(b)
	assert.Equal(t, Unsigned, p.State())
	assert.False(t, b.Signed())
	assert.Nil(t, b.SignedAt)
	assert.Empty(t, b.IPAddress)
	assert.Equal(t, "s1", b.ID)
}

func TestUploadSkipsDrawing(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1200, 400))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	dataURL, err := DecodeUpload(&buf)
	require.NoError(t, err)

	raw, err := DecodeDataURL(dataURL)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, MaxWidth)
	assert.LessOrEqual(t, cfg.Height, MaxHeight)

	b := &edtypes.Signature{ID: "s1"}
	p := NewPad(b, 0, 0)
	require.NoError(t, p.Upload(b, dataURL, "198.51.100.2", time.Now()))
	assert.Equal(t, Signed, p.State())
	assert.Equal(t, dataURL, b.Signature)

	_, err = DecodeUpload(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestRenderInk(t *testing.T) {
	img := Render([]Stroke{{{X: 5, Y: 5}, {X: 15, Y: 5}}, {{X: 30, Y: 30}}}, 40, 40).(*image.RGBA)
	assert.Equal(t, ink, img.RGBAAt(10, 5))
	assert.Equal(t, ink, img.RGBAAt(30, 30))
	assert.Zero(t, img.RGBAAt(20, 20).A)
}

func TestRenderClampsToCanvas(t *testing.T) {
	start := time.Now()
	img := Render([]Stroke{{{X: 0, Y: 10}, {X: 2e8, Y: 10}}, {{X: -1e12, Y: -1e12}}}, 500, 200).(*image.RGBA)
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, image.Rect(0, 0, 500, 200), img.Bounds())
	assert.Equal(t, ink, img.RGBAAt(250, 10))
	assert.Equal(t, ink, img.RGBAAt(499, 10))
	assert.Equal(t, ink, img.RGBAAt(0, 0))
}

func TestRasterize(t *testing.T) {
	long := make(Stroke, MaxPoints+1)
	for i := range long {
		long[i] = Point{X: float64(i % 500), Y: 50}
	}

	tests := []struct {
		name    string
		strokes []Stroke
		wantErr error
	}{
		{name: "drawing", strokes: []Stroke{{{X: 10, Y: 10}, {X: 80, Y: 40}}}},
		{name: "out of canvas", strokes: []Stroke{{{X: -5e9, Y: 3}, {X: 5e9, Y: 1e10}}}},
		{name: "empty", strokes: []Stroke{{}}, wantErr: ErrEmptyDrawing},
		{name: "too many points", strokes: []Stroke{long}, wantErr: ErrTooManyPoints},
		{name: "too many points across strokes", strokes: []Stroke{long[:MaxPoints/2+1], long[:MaxPoints/2]}, wantErr: ErrTooManyPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataURL, err := Rasterize(tt.strokes, DefaultWidth, DefaultHeight)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, dataURL)
				return
			}
			require.NoError(t, err)
			raw, err := DecodeDataURL(dataURL)
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, DefaultWidth, cfg.Width)
			assert.Equal(t, DefaultHeight, cfg.Height)
		})
	}
}
