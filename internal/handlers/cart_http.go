package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NEPJU/APIs/internal/service"
)

type CartHTTP struct {
	Cart      service.CartService
	Favorites service.FavoriteService
}

func NewCartHTTP(cart service.CartService, favs service.FavoriteService) *CartHTTP {
	return &CartHTTP{Cart: cart, Favorites: favs}
}

func (h *CartHTTP) Add(c *gin.Context) {
	var in struct {
		MemberID  uint `json:"memberId" binding:"required"`
		ProductID uint `json:"productId" binding:"required"`
		Quantity  *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Missing required fields: memberId and productId are required")
		return
	}
	if !sameMember(c, in.MemberID) {
		return
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	lines, err := h.Cart.Add(c.Request.Context(), in.MemberID, in.ProductID, qty)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product added to cart", "cartItems": lines})
}

func (h *CartHTTP) Get(c *gin.Context) {
	memberID, ok := uintParam(c, "memberId")
	if !ok || !sameMember(c, memberID) {
		return
	}
	lines, err := h.Cart.Get(c.Request.Context(), memberID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) Remove(c *gin.Context) {
	memberID, ok := uintParam(c, "memberId")
	if !ok || !sameMember(c, memberID) {
		return
	}
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	if err := h.Cart.Remove(c.Request.Context(), memberID, productID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CartHTTP) AddFavorite(c *gin.Context) {
	var in struct {
		MemberID  uint `json:"member_id" binding:"required"`
		ProductID uint `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Missing member_id or product_id")
		return
	}
	if !sameMember(c, in.MemberID) {
		return
	}
	if err := h.Favorites.Add(c.Request.Context(), in.MemberID, in.ProductID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product added to favorites"})
}

func (h *CartHTTP) ListFavorites(c *gin.Context) {
	memberID, ok := uintParam(c, "memberId")
	if !ok || !sameMember(c, memberID) {
		return
	}
	lines, err := h.Favorites.List(c.Request.Context(), memberID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) RemoveFavorite(c *gin.Context) {
	memberID, ok := uintParam(c, "memberId")
	if !ok || !sameMember(c, memberID) {
		return
	}
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	if err := h.Favorites.Remove(c.Request.Context(), memberID, productID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product removed from favorites"})
}
