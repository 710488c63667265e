package api

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"casaleon/server/internal/catalog"
	"casaleon/server/internal/contact"
	"casaleon/server/internal/deeplink"
	"casaleon/server/internal/detail"
	"casaleon/server/internal/filter"
	"casaleon/server/internal/geometry"
	"casaleon/server/internal/leads"
	"casaleon/server/internal/models"
)

type Handler struct {
	source  catalog.Source
	filter  *filter.Filter
	details *detail.Service
	linker  *contact.Linker
	leads   *leads.Service
	logger  *logrus.Logger
}

func NewHandler(source catalog.Source, f *filter.Filter, details *detail.Service, linker *contact.Linker, leadService *leads.Service, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		source:  source,
		filter:  f,
		details: details,
		linker:  linker,
		leads:   leadService,
		logger:  logger,
	}
}

// SearchQuery is the state of the search controls plus an optional deep link
type SearchQuery struct {
	Want     string `form:"want"`
	Type     string `form:"type"`
	Location string `form:"location"`
	Go       string `form:"go"`
}

// Criteria applies the control defaults, then the ?go= deep link
func (q SearchQuery) Criteria() (filter.Criteria, deeplink.Action) {
	criteria := filter.ParseCriteria(q.Want, q.Type, q.Location)
	action := deeplink.Resolve("", q.Go)
	return action.Apply(criteria), action
}

// search loads the catalog and decides the listing state
func (h *Handler) search(ctx context.Context, q SearchQuery) (filter.Decision, []models.Property, deeplink.Action, error) {
	criteria, action := q.Criteria()

	properties, err := h.source.Load(ctx)
	if err != nil {
		return h.filter.Decide(criteria, nil), nil, action, err
	}
	return h.filter.Decide(criteria, models.CardsFor(properties)), properties, action, nil
}

func (h *Handler) searchContactURL(c filter.Criteria) string {
	return h.linker.ForSearch(string(c.Want), c.Type, c.Location)
}

func (h *Handler) GetProperties(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse search query")
	}

	decision, properties, action, err := h.search(c.Request.Context(), q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":             decision.Mode,
		"criteria":         decision.Criteria,
		"listings_hidden":  decision.ListingsHidden(),
		"sell_form_hidden": decision.SellFormHidden(),
		"total":            len(properties),
		"hidden_count":     decision.HiddenCount(),
		"cards":            decision.VisibleCards(),
		"section":          action.Section,
		"contact_url":      h.searchContactURL(decision.Criteria),
	})
}

// GetProperty returns the detail view. Every failure answers 404 with the
// same fallback view.
func (h *Handler) GetProperty(c *gin.Context) {
	view, err := h.details.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetMapFeatures returns the visible listings as GeoJSON points, plus their
// convex coverage polygon when there are enough of them
func (h *Handler) GetMapFeatures(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse search query")
	}

	decision, properties, _, err := h.search(c.Request.Context(), q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load catalog"})
		return
	}

	fc := geometry.ListingFeatures(properties, decision.VisibleAt)
	if bound, ok := geometry.Bounds(fc); ok {
		fc.BBox = geojson.NewBBox(bound)
	}
	if coverage := geometry.CoverageFeature(fc); coverage != nil {
		fc.Append(coverage)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode features")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode features"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// ResolveDeepLink resolves a fragment and ?go= pair, or a navbar link when
// nav is given
func (h *Handler) ResolveDeepLink(c *gin.Context) {
	var action deeplink.Action
	if nav, ok := c.GetQuery("nav"); ok {
		action = deeplink.Nav(nav, c.Query("href"))
	} else {
		action = deeplink.Resolve(c.Query("fragment"), c.Query("go"))
	}

	c.JSON(http.StatusOK, gin.H{
		"action":   action,
		"none":     action.None(),
		"criteria": action.Apply(filter.ParseCriteria("", "", "")),
	})
}

// GetContactLink builds the WhatsApp link for a property title, or for the
// search controls when no title is given
func (h *Handler) GetContactLink(c *gin.Context) {
	if title, ok := c.GetQuery("title"); ok {
		c.JSON(http.StatusOK, gin.H{
			"url":     h.linker.ForProperty(title),
			"message": contact.PropertyMessage(title),
		})
		return
	}

	want, typ, loc := c.Query("want"), c.Query("type"), c.Query("location")
	c.JSON(http.StatusOK, gin.H{
		"url":     h.linker.ForSearch(want, typ, loc),
		"message": contact.SearchMessage(want, typ, loc),
	})
}

func (h *Handler) SubmitOwnerLead(c *gin.Context) {
	form, err := bindOwnerForm(c)
	if err != nil {
		h.logger.WithError(err).Error("Failed to parse owner lead")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	receipt, err := h.leads.SubmitOwner(form)
	if err != nil {
		h.rejectLead(c, err)
		return
	}
	c.JSON(http.StatusAccepted, receipt)
}

func (h *Handler) SubmitVisitLead(c *gin.Context) {
	form, err := bindVisitForm(c)
	if err != nil {
		h.logger.WithError(err).Error("Failed to parse visit lead")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	receipt, err := h.leads.SubmitVisit(form)
	if err != nil {
		h.rejectLead(c, err)
		return
	}
	c.JSON(http.StatusAccepted, receipt)
}

func (h *Handler) rejectLead(c *gin.Context, err error) {
	var verr *leads.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, verr)
		return
	}
	h.logger.WithError(err).Error("Failed to submit lead")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit lead"})
}

// bindOwnerForm reads a JSON body or an HTML form post
func bindOwnerForm(c *gin.Context) (leads.OwnerForm, error) {
	var form leads.OwnerForm
	if c.ContentType() == binding.MIMEJSON {
		err := c.ShouldBindJSON(&form)
		return form, err
	}

	form = leads.OwnerForm{
		Operation:   c.PostForm("operation"),
		Type:        c.PostForm("type"),
		Name:        c.PostForm("name"),
		Phone:       c.PostForm("phone"),
		ContactTime: c.PostForm("contact_time"),
		Zone:        c.PostForm("zone"),
		Notes:       c.PostForm("notes"),
		Consent:     leads.Checked(c.PostForm("consent")),
	}
	return form, nil
}

func bindVisitForm(c *gin.Context) (leads.VisitForm, error) {
	var form leads.VisitForm
	if c.ContentType() == binding.MIMEJSON {
		err := c.ShouldBindJSON(&form)
		return form, err
	}

	form = leads.VisitForm{
		PropertyID:    c.PostForm("property_id"),
		PropertyTitle: c.PostForm("property_title"),
		Name:          c.PostForm("name"),
		Phone:         c.PostForm("phone"),
		ContactTime:   c.PostForm("contact_time"),
		Notes:         c.PostForm("notes"),
		Consent:       leads.Checked(c.PostForm("consent")),
	}
	return form, nil
}
