package controller

import (
	"net/http"
	"path/filepath"
	"strings"

	"smarthotel/service"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	menu *service.MenuService
}

func NewMenuController(menu *service.MenuService) *MenuController {
	return &MenuController{menu: menu}
}

func (mc *MenuController) ListMenu(c *gin.Context) {
	items, err := mc.menu.List(requestContext(c), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", items)
}

func (mc *MenuController) GetMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := mc.menu.Get(requestContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", item)
}

func (mc *MenuController) Categories(c *gin.Context) {
	categories, err := mc.menu.Categories(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", categories)
}

func (mc *MenuController) AddMenuItem(c *gin.Context) {
	var req service.MenuInput
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid or missing price")
		return
	}
	item, err := mc.menu.Create(requestContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Menu item added successfully", item)
}

// BulkAddMenu imports an .xlsx upload sent as the "file" form field.
func (mc *MenuController) BulkAddMenu(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Excel file is required")
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
		badRequest(c, "Invalid file type, only .xlsx allowed")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "Unable to open Excel file")
		return
	}
	defer file.Close()

	res, err := mc.menu.ImportExcel(requestContext(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Created == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No valid rows found", "data": res})
		return
	}
	respondOK(c, http.StatusOK, "Bulk menu upload successful", res)
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.MenuInput
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid or missing price")
		return
	}
	item, err := mc.menu.Update(requestContext(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Menu item updated successfully", item)
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := mc.menu.Delete(requestContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Menu item deleted successfully", nil)
}
