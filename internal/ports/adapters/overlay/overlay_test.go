package overlay

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := New()
	b, err := r.Render("Epic FPS Victory")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 1080, img.Bounds().Dx())
	assert.Equal(t, 1920, img.Bounds().Dy())

	// Corners stay transparent so the video shows through.
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(1079, 1919).RGBA()
	assert.Zero(t, a)

	// The title box region is opaque.
	_, _, _, a = img.At(540, boxTop+5).RGBA()
	assert.NotZero(t, a)
}

func TestRender_EmptyTitle(t *testing.T) {
	r := New()
	_, err := r.Render("   ")
	require.Error(t, err)
}

func TestRender_LongTitleStaysInFrame(t *testing.T) {
	r := New()
	b, err := r.Render("An Extremely Long And Overly Descriptive Title That Keeps Going And Going Without End")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1080, 1920), img.Bounds())
}

func TestWrapTitle(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  []string
	}{
		{"short", 24, []string{"short"}},
		{"two words", 5, []string{"two", "words"}},
		{"a b c", 24, []string{"a b c"}},
	}
	for _, tt := range tests {
		got := wrapTitle(tt.in, tt.limit)
		require.Equal(t, len(tt.want), len(got), "input %q", tt.in)
		for i := range tt.want {
			assert.Equal(t, tt.want[i], got[i])
		}
	}
}
