// internal/api/handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"stall-market-api-server/internal/auth"
	"stall-market-api-server/internal/market"
	"stall-market-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthHandler struct {
	DB      *mongo.Database
	Vendors market.VendorRepository
}

type RegisterVendorRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	ShopName string `json:"shopName" binding:"required"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterVendor creates a vendor account with a fresh shop ID and an
// unissued license.
func (h *AuthHandler) RegisterVendor(c *gin.Context) {
	var req RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.Vendors.FindByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A vendor with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	vendor := &models.Vendor{
		Email:     req.Email,
		Password:  hashedPassword,
		Name:      req.Name,
		ShopID:    "SHOP-" + strings.ToUpper(uuid.New().String()[:8]),
		ShopName:  req.ShopName,
		Phone:     req.Phone,
		Category:  req.Category,
		License:   models.License{Status: models.LicenseNotIssued},
		Products:  []models.Product{},
		Orders:    []models.Order{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Vendors.Insert(c.Request.Context(), vendor); err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateJWT(vendor.ID.Hex(), auth.RoleVendor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"token":  token,
		"vendor": vendor,
	})
}

// LoginVendor issues a vendor-scoped token.
func (h *AuthHandler) LoginVendor(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vendor, err := h.Vendors.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPasswordHash(req.Password, vendor.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(vendor.ID.Hex(), auth.RoleVendor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token, "vendor": vendor})
}

// RegisterUser creates a buyer account.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("users")

	count, err := collection.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		respondError(c, err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: hashedPassword,
		Role:     auth.RoleUser,
	}

	result, err := collection.InsertOne(context.Background(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	token, err := auth.GenerateJWT(user.ID.Hex(), auth.RoleUser)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "token": token, "user": user})
}

// Login authenticates a buyer or the admin account against the users
// collection; the role claim comes from the stored document.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("users")

	var user models.User
	err := collection.FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token, "role": user.Role})
}
