// internal/api/handlers/vendor_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"stall-market-api-server/internal/market"
	"stall-market-api-server/internal/models"
	"stall-market-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VendorHandler covers vendor profile and product catalog management.
type VendorHandler struct {
	Vendors    market.VendorRepository
	S3Uploader *s3.Uploader
}

type UpdateProfileRequest struct {
	Name     string `json:"name" binding:"required"`
	ShopName string `json:"shopName" binding:"required"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

type ProductRequest struct {
	Name     string  `form:"name" binding:"required"`
	Price    float64 `form:"price" binding:"required,gt=0"`
	Stock    int     `form:"stock" binding:"min=0"`
	Category string  `form:"category"`
}

// GetProfile returns the calling vendor's document.
func (h *VendorHandler) GetProfile(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	vendor, err := h.Vendors.FindByID(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

// UpdateProfile updates the vendor's editable profile fields.
func (h *VendorHandler) UpdateProfile(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Vendors.UpdateProfile(c.Request.Context(), vendorID, req.Name, req.ShopName, req.Phone, req.Category); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Profile updated successfully"})
}

// GetAllVendors lists every vendor for the admin panel.
func (h *VendorHandler) GetAllVendors(c *gin.Context) {
	vendors, err := h.Vendors.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// CreateProduct adds a product to the vendor's catalog. The image is an
// optional multipart file stored on S3 by reference.
func (h *VendorHandler) CreateProduct(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		ProductID: "PRD-" + strings.ToUpper(uuid.New().String()[:8]),
		Name:      req.Name,
		Price:     req.Price,
		Stock:     req.Stock,
		Category:  req.Category,
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		objectKey := fmt.Sprintf("products/%s/%s%s", vendorID.Hex(), product.ProductID, filepath.Ext(fileHeader.Filename))
		url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey)
		if err != nil {
			respondError(c, err)
			return
		}
		product.ImageURL = url
	}

	if err := h.Vendors.PushProduct(c.Request.Context(), vendorID, product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces one of the vendor's products.
func (h *VendorHandler) UpdateProduct(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}
	productID := c.Param("productId")

	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vendor, err := h.Vendors.FindByID(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	var existing *models.Product
	for i := range vendor.Products {
		if vendor.Products[i].ProductID == productID {
			existing = &vendor.Products[i]
			break
		}
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	product := models.Product{
		ProductID: productID,
		Name:      req.Name,
		Price:     req.Price,
		Stock:     req.Stock,
		Category:  req.Category,
		ImageURL:  existing.ImageURL,
	}

	ok2, err := h.Vendors.UpdateProduct(c.Request.Context(), vendorID, product)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok2 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the vendor's catalog.
func (h *VendorHandler) DeleteProduct(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}
	productID := c.Param("productId")

	removed, err := h.Vendors.RemoveProduct(c.Request.Context(), vendorID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Product deleted successfully"})
}

// GetCatalog returns every product across vendors for the public shop
// listing, tagged with the selling shop.
func (h *VendorHandler) GetCatalog(c *gin.Context) {
	vendors, err := h.Vendors.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	type catalogEntry struct {
		models.Product
		ShopID   string `json:"shopID"`
		ShopName string `json:"shopName"`
	}

	catalog := []catalogEntry{}
	for _, vendor := range vendors {
		for _, product := range vendor.Products {
			catalog = append(catalog, catalogEntry{Product: product, ShopID: vendor.ShopID, ShopName: vendor.ShopName})
		}
	}

	c.JSON(http.StatusOK, catalog)
}
