package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"casaleon/server/internal/detail"
	"casaleon/server/internal/filter"
	"casaleon/server/internal/leads"
	"casaleon/server/internal/models"
	"casaleon/server/internal/web"
)

func (h *Handler) homePage(c *gin.Context, q SearchQuery) web.HomePage {
	decision, _, action, err := h.search(c.Request.Context(), q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog for home page")
	}

	return web.HomePage{
		Criteria:       decision.Criteria,
		Mode:           decision.Mode.String(),
		Cards:          decision.VisibleCards(),
		HiddenCount:    decision.HiddenCount(),
		ListingsHidden: decision.ListingsHidden(),
		SellFormHidden: decision.SellFormHidden(),
		Types:          models.PropertyTypes,
		ContactURL:     h.searchContactURL(decision.Criteria),
		Section:        string(action.Section),
		Owner:          leads.DefaultOwnerForm(),
	}
}

// Home renders the landing page for the search controls in the query string
func (h *Handler) Home(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse search query")
	}
	c.HTML(http.StatusOK, web.HomeTemplate, h.homePage(c, q))
}

// PostOwnerLead handles the owner form of the landing page. The page is
// rendered in sell mode with either the alert or the preview.
func (h *Handler) PostOwnerLead(c *gin.Context) {
	form, _ := bindOwnerForm(c)
	page := h.homePage(c, SearchQuery{Want: string(filter.WantSell)})

	receipt, err := h.leads.SubmitOwner(form)
	if err != nil {
		page.Owner = form
		page.Alert = err.Error()
		c.HTML(http.StatusUnprocessableEntity, web.HomeTemplate, page)
		return
	}

	page.Preview = receipt.Preview
	if reset, ok := receipt.Reset.(leads.OwnerForm); ok {
		page.Owner = reset
	}
	c.HTML(http.StatusOK, web.HomeTemplate, page)
}

func (h *Handler) propertyPage(c *gin.Context, id string) (web.PropertyPage, int) {
	status := http.StatusOK
	view, err := h.details.View(c.Request.Context(), id)
	if err != nil {
		status = http.StatusNotFound
	}

	return web.PropertyPage{
		View:  view,
		Visit: leads.DefaultVisitForm(view.ID, view.Title),
	}, status
}

// Property renders the detail page; ?foto= opens the lightbox on a slide
func (h *Handler) Property(c *gin.Context) {
	page, status := h.propertyPage(c, c.Query("id"))
	if foto, ok := c.GetQuery("foto"); ok {
		if i, err := strconv.Atoi(foto); err == nil {
			page.Lightbox = detail.LightboxAt(page.View, i)
		}
	}
	c.HTML(status, web.PropertyTemplate, page)
}

// PostVisitLead handles the visit form of the detail page
func (h *Handler) PostVisitLead(c *gin.Context) {
	form, _ := bindVisitForm(c)
	// the lead stands on its own; an unknown listing only changes the page
	page, _ := h.propertyPage(c, form.PropertyID)

	receipt, err := h.leads.SubmitVisit(form)
	if err != nil {
		page.Visit = form
		page.Alert = err.Error()
		c.HTML(http.StatusUnprocessableEntity, web.PropertyTemplate, page)
		return
	}

	page.Preview = receipt.Preview
	if reset, ok := receipt.Reset.(leads.VisitForm); ok {
		page.Visit = reset
	}
	c.HTML(http.StatusOK, web.PropertyTemplate, page)
}
