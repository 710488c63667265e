package detail

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casaleon/server/internal/catalog"
	"casaleon/server/internal/contact"
	"casaleon/server/internal/models"
)

func ptr(v float64) *float64 { return &v }

func newTestRenderer() *Renderer {
	return NewRenderer(Settings{
		ImageBase:    "./assets/images/",
		HeroFallback: "./assets/images/property-1.jpg",
		GallerySize:  5,
		MapZoom:      15,
	}, contact.NewLinker("5214793139842"))
}

type staticSource struct {
	properties []models.Property
	err        error
}

func (s staticSource) Load(context.Context) ([]models.Property, error) {
	return s.properties, s.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRenderer_Render(t *testing.T) {
	r := newTestRenderer()
	p := &models.Property{
		ID:              "7",
		Title:           "Casa Jardines",
		Address:         "Col. Jardines del Moral, León, Gto.",
		Operation:       "comprar",
		Type:            "casa",
		Price:           ptr(1500000),
		Currency:        "MXN",
		Bedrooms:        ptr(3),
		Bathrooms:       ptr(2.5),
		BuiltM2:         ptr(180),
		Features:        []string{"Jardín", "Cochera"},
		Images:          []string{"./assets/images/casa-7.jpg"},
		Description:     "Casa amplia",
		Excerpt:         "Resumen",
		DescriptionLong: "",
	}

	v := r.Render(p)
	assert.True(t, v.Available)
	assert.Equal(t, "7", v.ID)
	assert.Equal(t, "./assets/images/casa-7.jpg", v.HeroImage)
	assert.Equal(t, "Casa Jardines", v.HeroAlt)
	assert.Equal(t, "Casa Jardines", v.Title)
	assert.Equal(t, "Disponible", v.Availability)
	assert.Equal(t, "$1,500,000", v.Price)
	assert.Equal(t, "Venta", v.Operation)
	assert.Equal(t, "Casa", v.Type)
	assert.Equal(t, "3 rec", v.Bedrooms)
	assert.Equal(t, "2.5 baños", v.Bathrooms)
	assert.Equal(t, "180 m²", v.Size)
	assert.Equal(t, []string{"Jardín", "Cochera"}, v.Features)
	assert.Equal(t, "Casa amplia", v.Description)
	assert.Equal(t, "Casa Jardines", v.VisitTitle)
	assert.Equal(t, "https://wa.me/5214793139842?text=Hola%2C%20me%20interesa%20%22Casa%20Jardines%22.", v.WhatsAppURL)
	require.Len(t, v.Gallery, 5)
	assert.Equal(t, "Foto de Casa Jardines", v.Gallery[0].Alt)
	require.NotNil(t, v.Map)
	assert.Equal(t, "Col. Jardines del Moral, León, Gto.", v.Map.Query)
}

func TestRenderer_RenderDefaults(t *testing.T) {
	r := newTestRenderer()
	v := r.Render(&models.Property{ID: "2", Operation: "rentar"})

	assert.Equal(t, "./assets/images/property-1.jpg", v.HeroImage)
	assert.Equal(t, "Imagen de la propiedad", v.HeroAlt)
	assert.Equal(t, "Propiedad", v.Title)
	assert.Equal(t, "esta propiedad", v.VisitTitle)
	assert.Equal(t, "Renta", v.Operation)
	assert.Equal(t, "", v.Type)
	assert.Equal(t, "", v.Price)
	assert.Equal(t, "0 rec", v.Bedrooms)
	assert.Equal(t, "0 baños", v.Bathrooms)
	assert.Equal(t, "0 m²", v.Size)
	assert.Equal(t, "", v.Description)
	assert.Empty(t, v.Features)
}

func TestRenderer_DescriptionPriority(t *testing.T) {
	r := newTestRenderer()
	assert.Equal(t, "largo", r.Render(&models.Property{DescriptionLong: "largo", Description: "corto", Excerpt: "extracto"}).Description)
	assert.Equal(t, "corto", r.Render(&models.Property{Description: "corto", Excerpt: "extracto"}).Description)
	assert.Equal(t, "extracto", r.Render(&models.Property{Excerpt: "extracto"}).Description)
}

func TestRenderer_SizePrefersArea(t *testing.T) {
	r := newTestRenderer()
	assert.Equal(t, "120 m²", r.Render(&models.Property{AreaM2: ptr(120), BuiltM2: ptr(90)}).Size)
	assert.Equal(t, "0 m²", r.Render(&models.Property{AreaM2: ptr(0), BuiltM2: ptr(90)}).Size)
}

func TestPriceText(t *testing.T) {
	tests := []struct {
		name     string
		property models.Property
		expected string
	}{
		{name: "Exact MXN", property: models.Property{Price: ptr(1500000), Currency: "MXN"}, expected: "$1,500,000"},
		{name: "Currency defaults to MXN", property: models.Property{Price: ptr(15000)}, expected: "$15,000"},
		{name: "Rounded to whole pesos", property: models.Property{Price: ptr(999.5)}, expected: "$1,000"},
		{name: "USD", property: models.Property{Price: ptr(250000), Currency: "usd"}, expected: "USD 250,000"},
		{name: "Floor price", property: models.Property{PriceFrom: ptr(2300000)}, expected: "Desde $2,300,000"},
		{name: "Exact wins over floor", property: models.Property{Price: ptr(100), PriceFrom: ptr(50)}, expected: "$100"},
		{name: "No price", property: models.Property{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PriceText(&tt.property))
		})
	}
}

func TestRenderer_NotAvailable(t *testing.T) {
	v := newTestRenderer().NotAvailable()

	assert.False(t, v.Available)
	assert.Equal(t, "Propiedad no disponible", v.Title)
	for _, field := range []string{v.Address, v.Availability, v.Price, v.Operation, v.Type, v.Bedrooms, v.Bathrooms, v.Size} {
		assert.Equal(t, Placeholder, field)
	}
	assert.Empty(t, v.Features)
	assert.Empty(t, v.Gallery)
	assert.Empty(t, v.Description)
	assert.Nil(t, v.Map)
}

func TestRenderer_GalleryPaths(t *testing.T) {
	r := newTestRenderer()

	paths := r.GalleryPaths("3")
	assert.Equal(t, []string{
		"./assets/images/property-3-carrusel-1.jpg",
		"./assets/images/property-3-carrusel-2.jpg",
		"./assets/images/property-3-carrusel-3.jpg",
		"./assets/images/property-3-carrusel-4.jpg",
		"./assets/images/property-3-carrusel-5.jpg",
	}, paths)

	// independent of the record's own images
	v := r.Render(&models.Property{ID: "3", Images: []string{"a.jpg"}})
	assert.Len(t, v.Gallery, 5)
	v = r.Render(&models.Property{ID: "3", Images: []string{"a", "b", "c", "d", "e", "f", "g"}})
	assert.Len(t, v.Gallery, 5)
}

func TestBuildMap(t *testing.T) {
	lat, lng := 21.1250, -101.686

	m := BuildMap(&models.Property{Latitude: &lat, Longitude: &lng, MapQuery: "ignored", Address: "ignored"}, 15)
	assert.Equal(t, "21.125,-101.686", m.Query)
	require.NotNil(t, m.Point)
	assert.Equal(t, lat, m.Point.Lat())
	assert.Equal(t, "https://www.google.com/maps?q=21.125%2C-101.686&z=15&output=embed", m.EmbedURL)
	assert.Equal(t, "https://www.google.com/maps?q=21.125%2C-101.686", m.OpenURL)

	m = BuildMap(&models.Property{Latitude: &lat, MapQuery: "Plaza Mayor León", Address: "ignored"}, 15)
	assert.Equal(t, "Plaza Mayor León", m.Query)
	assert.Nil(t, m.Point)
	assert.Equal(t, "https://www.google.com/maps?q=Plaza%20Mayor%20Le%C3%B3n", m.OpenURL)

	m = BuildMap(&models.Property{Address: "Centro, León"}, 12)
	assert.Equal(t, "Centro, León", m.Query)
	assert.Contains(t, m.EmbedURL, "&z=12&output=embed")
}

func TestService_View(t *testing.T) {
	src := staticSource{properties: []models.Property{
		{ID: "7", Title: "Depto", Price: ptr(1500000), Currency: "MXN"},
	}}
	svc := NewService(src, newTestRenderer(), quietLogger())
	ctx := context.Background()

	v, err := svc.View(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "$1,500,000", v.Price)

	fallback := svc.Renderer().NotAvailable()

	v, err = svc.View(ctx, "99")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, fallback, v)

	v, err = svc.View(ctx, "")
	assert.ErrorIs(t, err, catalog.ErrMissingID)
	assert.Equal(t, fallback, v)

	broken := NewService(staticSource{err: errors.New("boom")}, newTestRenderer(), quietLogger())
	v, err = broken.View(ctx, "7")
	assert.Error(t, err)
	assert.Equal(t, fallback, v)
}
