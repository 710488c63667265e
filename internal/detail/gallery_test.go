package detail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casaleon/server/internal/models"
)

func testSlides() []string {
	return []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"}
}

func TestViewer_CarouselClamps(t *testing.T) {
	v := NewViewer(testSlides())

	v.ScrollPrev()
	assert.Equal(t, 0, v.Index())

	v.SnapTo(3)
	v.ScrollNext()
	v.ScrollNext()
	v.ScrollNext()
	assert.Equal(t, 4, v.Index())

	v.SnapTo(-10)
	assert.Equal(t, 0, v.Index())
	v.SnapTo(10)
	assert.Equal(t, 4, v.Index())
	assert.False(t, v.IsOpen())
}

func TestViewer_LightboxWraps(t *testing.T) {
	v := NewViewer(testSlides())

	require.True(t, v.Open(0))
	v.Prev()
	assert.Equal(t, 4, v.Index())
	assert.Equal(t, "5.jpg", v.Current())

	v.Next()
	assert.Equal(t, 0, v.Index())

	require.True(t, v.Open(4))
	v.Next()
	assert.Equal(t, 0, v.Index())
}

func TestViewer_OpenOutOfRange(t *testing.T) {
	v := NewViewer(testSlides())
	assert.False(t, v.Open(5))
	assert.False(t, v.Open(-1))
	assert.False(t, v.IsOpen())
}

func TestViewer_HandleKey(t *testing.T) {
	v := NewViewer(testSlides())

	// closed lightbox ignores keys
	assert.False(t, v.HandleKey(KeyArrowRight))
	assert.Equal(t, 0, v.Index())

	v.Open(2)
	assert.True(t, v.HandleKey(KeyArrowRight))
	assert.Equal(t, 3, v.Index())
	assert.True(t, v.HandleKey(KeyArrowLeft))
	assert.True(t, v.HandleKey(KeyArrowLeft))
	assert.Equal(t, 1, v.Index())
	assert.False(t, v.HandleKey("Enter"))

	assert.True(t, v.HandleKey(KeyEscape))
	assert.False(t, v.IsOpen())
	assert.False(t, v.HandleKey(KeyArrowLeft))
	assert.Equal(t, 1, v.Index())
}

func TestViewer_SharedCursor(t *testing.T) {
	v := NewViewer(testSlides())

	v.Open(4)
	v.Close()
	v.ScrollPrev()
	assert.Equal(t, 3, v.Index())
}

func TestViewer_Empty(t *testing.T) {
	v := NewViewer(nil)
	v.SnapTo(2)
	v.Next()
	v.Prev()
	assert.Equal(t, 0, v.Index())
	assert.Equal(t, "", v.Current())
	assert.False(t, v.Open(0))
}

func TestLightboxAt(t *testing.T) {
	view := newTestRenderer().Render(&models.Property{ID: "3", Title: "Casa"})

	lb := LightboxAt(view, 0)
	require.NotNil(t, lb)
	assert.Equal(t, "./assets/images/property-3-carrusel-1.jpg", lb.Src)
	assert.Equal(t, 4, lb.PrevIndex)
	assert.Equal(t, 1, lb.NextIndex)

	lb = LightboxAt(view, 4)
	require.NotNil(t, lb)
	assert.Equal(t, 3, lb.PrevIndex)
	assert.Equal(t, 0, lb.NextIndex)

	assert.Nil(t, LightboxAt(view, 5))
	assert.Nil(t, LightboxAt(newTestRenderer().NotAvailable(), 0))
}
