package handlers

import (
	"net/http"

	"agrivoltaics/internal/api/models"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/mounting"

	"github.com/gin-gonic/gin"
)

// ListMountings handles GET /api/v1/mountings
func ListMountings(c *gin.Context) {
	mountings := []models.MountingInfo{
		{
			Name:        string(model.MountingFixed),
			Description: "Rows at a fixed tilt and azimuth all year.",
			Parameters: []models.ParameterInfo{
				{Name: "tilt", Type: "float", Description: "Panel tilt from horizontal, degrees", Default: 30.0},
				{Name: "azimuth", Type: "float", Description: "Panel azimuth, degrees (180 = south)", Default: 180.0},
			},
		},
		{
			Name:        string(model.MountingSingleAxis),
			Description: "Rows rotate about a horizontal axis to follow the sun, with backtracking to avoid row-to-row shading.",
			Parameters: []models.ParameterInfo{
				{Name: "azimuth", Type: "float", Description: "Axis azimuth, degrees", Default: 180.0},
				{Name: "tracker_max_angle", Type: "float", Description: "Rotation limit, degrees", Default: mounting.DefaultMaxAngle},
				{Name: "backtrack", Type: "bool", Description: "Reduce rotation to avoid shading the next row", Default: true},
			},
		},
	}
	c.JSON(http.StatusOK, gin.H{"mountings": mountings})
}
