// internal/api/handlers/license_handler.go
package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"stall-market-api-server/internal/market"
	"stall-market-api-server/internal/models"
	"stall-market-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LicenseHandler exposes the license lifecycle: vendor application with
// multipart photo upload, admin listing and approval.
type LicenseHandler struct {
	License    *market.LicenseService
	Vendors    market.VendorRepository
	S3Uploader *s3.Uploader
}

// Apply submits the vendor's license application. Text fields and the two
// photos arrive as multipart form data; photos are pushed to S3 and only
// their URLs reach the lifecycle service.
func (h *LicenseHandler) Apply(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	docs := models.LicenseDocuments{
		AadhaarID:           c.PostForm("aadhaarID"),
		PANNumber:           c.PostForm("panNumber"),
		BusinessName:        c.PostForm("businessName"),
		GSTNumber:           c.PostForm("gstNumber"),
		YearsInBusiness:     c.PostForm("yearsInBusiness"),
		BusinessDescription: c.PostForm("businessDescription"),
	}

	shopPhotoURL, err := h.uploadFormPhoto(c, vendorID, "shopPhoto")
	if err != nil {
		respondError(c, err)
		return
	}
	docs.ShopPhotoURL = shopPhotoURL

	vendorPhotoURL, err := h.uploadFormPhoto(c, vendorID, "vendorPhoto")
	if err != nil {
		respondError(c, err)
		return
	}
	docs.VendorPhotoURL = vendorPhotoURL

	lic, err := h.License.Apply(c.Request.Context(), vendorID, docs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "license": lic})
}

// uploadFormPhoto pushes one multipart file field to S3 and returns its
// URL. A missing field is not an error here; the lifecycle service decides
// which documents are mandatory.
func (h *LicenseHandler) uploadFormPhoto(c *gin.Context, vendorID primitive.ObjectID, field string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	objectKey := fmt.Sprintf("licenses/%s/%s-%s%s",
		vendorID.Hex(), field, uuid.New().String()[:8], filepath.Ext(fileHeader.Filename))
	return h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey)
}

// GetMyLicense returns the calling vendor's license state.
func (h *LicenseHandler) GetMyLicense(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	vendor, err := h.Vendors.FindByID(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, vendor.License)
}

// GetPendingApplications lists vendors awaiting license approval.
func (h *LicenseHandler) GetPendingApplications(c *gin.Context) {
	vendors, err := h.License.PendingApplications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// Approve issues the license for a pending application.
func (h *LicenseHandler) Approve(c *gin.Context) {
	vendorID, ok := pathID(c, "vendorId")
	if !ok {
		return
	}

	lic, err := h.License.Approve(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "license": lic})
}
