package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"agrivoltaics/internal/api/models"
	"agrivoltaics/internal/config"

	"github.com/gin-gonic/gin"
)

var errUnknownSite = errors.New("unknown site preset")

// SiteHandler serves the site presets in SITES_DIR (default examples/sites).
type SiteHandler struct {
	siteDir string
}

func NewSiteHandler() *SiteHandler {
	dir := os.Getenv("SITES_DIR")
	if dir == "" {
		dir = filepath.Join("examples", "sites")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Printf("SiteHandler: Using site directory: %s", dir)
	return &SiteHandler{siteDir: dir}
}

// NewSiteHandlerWithDir is NewSiteHandler with an explicit directory.
func NewSiteHandlerWithDir(dir string) *SiteHandler {
	return &SiteHandler{siteDir: dir}
}

func (h *SiteHandler) Dir() string { return h.siteDir }

// ListSites handles GET /api/v1/sites
func (h *SiteHandler) ListSites(c *gin.Context) {
	sites := []models.SiteInfo{}

	entries, err := os.ReadDir(h.siteDir)
	if err != nil {
		log.Printf("SiteHandler: Failed to read site directory %s: %v", h.siteDir, err)
		c.JSON(http.StatusOK, gin.H{"sites": sites})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		preset, err := h.Load(id)
		if err != nil {
			log.Printf("SiteHandler: Skipping %s: %v", entry.Name(), err)
			continue
		}
		sites = append(sites, h.info(id, preset))
	}

	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

// GetSite handles GET /api/v1/sites/:id
func (h *SiteHandler) GetSite(c *gin.Context) {
	id := c.Param("id")
	preset, err := h.Load(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.info(id, preset))
}

// info shows a preset as it evaluates: layered over the reference scenario.
func (h *SiteHandler) info(id string, preset config.SiteOverride) models.SiteInfo {
	site := preset.Apply(config.Default().Site)
	if preset.Name == nil || *preset.Name == "" {
		site.Name = id
	}
	return models.SiteInfo{
		ID:   id,
		Name: site.Name,
		File: filepath.Join(h.siteDir, id+".yaml"),
		Site: site,
	}
}

// Load reads a preset by id (file name without .yaml).
func (h *SiteHandler) Load(id string) (config.SiteOverride, error) {
	id = strings.TrimSuffix(strings.TrimSpace(id), ".yaml")
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return config.SiteOverride{}, fmt.Errorf("%w: %q", errUnknownSite, id)
	}
	site, err := config.LoadSiteFile(filepath.Join(h.siteDir, id+".yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return config.SiteOverride{}, fmt.Errorf("%w: %q", errUnknownSite, id)
	}
	return site, err
}
