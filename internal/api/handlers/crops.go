package handlers

import (
	"net/http"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/api/models"
	"agrivoltaics/internal/model"

	"github.com/gin-gonic/gin"
)

// ListCrops handles GET /api/v1/crops
func ListCrops(c *gin.Context) {
	crops := []models.CropInfo{}
	for _, name := range agriculture.SupportedCrops() {
		p, err := agriculture.Lookup(name)
		if err != nil {
			continue
		}
		crops = append(crops, cropInfo(p))
	}
	c.JSON(http.StatusOK, gin.H{"crops": crops})
}

// GetCrop handles GET /api/v1/crops/:name
func GetCrop(c *gin.Context) {
	p, err := agriculture.Lookup(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cropInfo(p))
}

func cropInfo(p agriculture.Profile) models.CropInfo {
	info := models.CropInfo{Name: p.Name}
	for m, st := range p.Stages {
		cm := models.CropMonth{Month: model.MonthNames[m], Stage: string(st)}
		if r, ok := p.Ranges[st]; ok && st != agriculture.StageDormant {
			cm.MinPPFD, cm.MaxPPFD = r.MinPPFD, r.MaxPPFD
			cm.MinKW, cm.MaxKW = r.MinKW(), r.MaxKW()
		}
		info.Months = append(info.Months, cm)
	}
	return info
}
