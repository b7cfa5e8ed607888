package controller

import (
	"errors"
	"net/http"

	"viksit_backend/internal/service"
	"viksit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudyMaterialController struct {
	StudyMaterialService *service.StudyMaterialService
}

func NewStudyMaterialController(svc *service.StudyMaterialService) *StudyMaterialController {
	return &StudyMaterialController{StudyMaterialService: svc}
}

func (c *StudyMaterialController) List(ctx *gin.Context) {
	materials, err := c.StudyMaterialService.ListMaterials("")
	if err != nil {
		util.InternalErrorPage(ctx, err)
		return
	}
	util.Render(ctx, http.StatusOK, "studymaterials.html", gin.H{
		"title":          "Study materials",
		"studyMaterials": materials,
	})
}

func (c *StudyMaterialController) Detail(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.NotFoundPage(ctx)
		return
	}

	detail, err := c.StudyMaterialService.GetMaterial(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFoundPage(ctx)
			return
		}
		util.InternalErrorPage(ctx, err)
		return
	}

	util.Render(ctx, http.StatusOK, "studymaterial_detail.html", gin.H{
		"title":    detail.Material.Title,
		"material": detail.Material,
		"items":    detail.Items,
	})
}
