package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListStates handles GET /api/v1/locations/states. With a q parameter it
// fuzzy-searches state names, otherwise it lists every state.
func (h *Handlers) ListStates(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		c.JSON(http.StatusOK, gin.H{"states": h.directory.SearchStates(query)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"states": h.directory.States()})
}

// ListCities handles GET /api/v1/locations/cities. Requires a state; with a
// q parameter it fuzzy-searches city names within that state.
func (h *Handlers) ListCities(c *gin.Context) {
	state := c.Query("state")
	if query := c.Query("q"); query != "" {
		c.JSON(http.StatusOK, gin.H{"cities": h.directory.SearchCities(query, state)})
		return
	}
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state parameter is required"})
		return
	}
	if !h.directory.ValidateState(state) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": h.directory.CitiesInState(state)})
}

// ValidateLocation handles GET /api/v1/locations/validate
func (h *Handlers) ValidateLocation(c *gin.Context) {
	state := c.Query("state")
	city := c.Query("city")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state parameter is required"})
		return
	}

	valid := h.directory.ValidateState(state)
	if valid && city != "" {
		valid = h.directory.ValidateCity(city, state)
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}
