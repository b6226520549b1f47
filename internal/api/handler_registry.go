package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-backend/internal/model"
)

// Machine types

func (h *Handler) ListMachineTypes(c *gin.Context) {
	types, err := h.store.ListMachineTypes(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machine types"})
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *Handler) CreateMachineType(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		IsAttachment bool   `json:"isAttachment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mt := model.MachineType{ID: uuid.NewString(), Name: req.Name, IsAttachment: req.IsAttachment}
	if err := h.store.CreateMachineType(c.Request.Context(), &mt, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, mt)
}

// Equipment

func (h *Handler) ListEquipment(c *gin.Context) {
	onlyActive := c.DefaultQuery("include_inactive", "false") != "true"
	equipment, err := h.store.ListEquipment(c.Request.Context(), onlyActive)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve equipment"})
		return
	}
	c.JSON(http.StatusOK, equipment)
}

func (h *Handler) GetEquipment(c *gin.Context) {
	eq, err := h.store.FindEquipmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "equipment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, eq)
}

type equipmentRequest struct {
	UnitNumber    string  `json:"unitNumber" binding:"required"`
	MachineTypeID string  `json:"machineTypeId" binding:"required"`
	OwnershipType string  `json:"ownershipType" binding:"required,oneof=owned rented"`
	SupplierID    *string `json:"supplierId"`
	HourlyRate    float64 `json:"hourlyRate"`
}

func (h *Handler) CreateEquipment(c *gin.Context) {
	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.OwnershipType == model.OwnershipRented && req.SupplierID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fornecedor obrigatório para equipamento alugado"})
		return
	}
	eq := model.Equipment{
		ID:            uuid.NewString(),
		UnitNumber:    req.UnitNumber,
		MachineTypeID: req.MachineTypeID,
		OwnershipType: req.OwnershipType,
		SupplierID:    req.SupplierID,
		HourlyRate:    req.HourlyRate,
		Active:        true,
	}
	if err := h.store.CreateEquipment(c.Request.Context(), &eq, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, eq)
}

func (h *Handler) UpdateEquipment(c *gin.Context) {
	eq, err := h.store.FindEquipmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "equipment not found"})
		return
	}
	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eq.UnitNumber = req.UnitNumber
	eq.MachineTypeID = req.MachineTypeID
	eq.OwnershipType = req.OwnershipType
	eq.SupplierID = req.SupplierID
	eq.HourlyRate = req.HourlyRate
	eq.MachineType = model.MachineType{}
	eq.Supplier = nil
	if err := h.store.UpdateEquipment(c.Request.Context(), eq, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, eq)
}

func (h *Handler) RetireEquipment(c *gin.Context) {
	if err := h.store.RetireEquipment(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Sites

type siteRequest struct {
	Title   string `json:"title" binding:"required"`
	Address string `json:"address"`
}

func (h *Handler) ListSites(c *gin.Context) {
	onlyActive := c.DefaultQuery("include_inactive", "false") != "true"
	sites, err := h.store.ListSites(c.Request.Context(), onlyActive)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sites"})
		return
	}
	c.JSON(http.StatusOK, sites)
}

func (h *Handler) CreateSite(c *gin.Context) {
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	site := model.Site{ID: uuid.NewString(), Title: req.Title, Address: req.Address, Active: true}
	if err := h.store.CreateSite(c.Request.Context(), &site, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, site)
}

func (h *Handler) UpdateSite(c *gin.Context) {
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	site := model.Site{ID: c.Param("id"), Title: req.Title, Address: req.Address, Active: true}
	if err := h.store.UpdateSite(c.Request.Context(), &site, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, site)
}

func (h *Handler) ArchiveSite(c *gin.Context) {
	if err := h.store.ArchiveSite(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Suppliers

type supplierRequest struct {
	Name     string `json:"name" binding:"required"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

func (h *Handler) ListSuppliers(c *gin.Context) {
	onlyActive := c.DefaultQuery("include_inactive", "false") != "true"
	suppliers, err := h.store.ListSuppliers(c.Request.Context(), onlyActive)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve suppliers"})
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func (h *Handler) CreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sup := model.Supplier{
		ID: uuid.NewString(), Name: req.Name, Document: req.Document,
		Phone: req.Phone, Email: req.Email, Active: true,
	}
	if err := h.store.CreateSupplier(c.Request.Context(), &sup, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sup)
}

func (h *Handler) UpdateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sup := model.Supplier{
		ID: c.Param("id"), Name: req.Name, Document: req.Document,
		Phone: req.Phone, Email: req.Email, Active: true,
	}
	if err := h.store.UpdateSupplier(c.Request.Context(), &sup, actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (h *Handler) ArchiveSupplier(c *gin.Context) {
	if err := h.store.ArchiveSupplier(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
