package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/NEPJU/APIs/internal/service"
)

const maxProofBytes = 10 << 20

type OrderHTTP struct {
	S service.OrderService
}

func NewOrderHTTP(s service.OrderService) *OrderHTTP { return &OrderHTTP{S: s} }

func (h *OrderHTTP) Place(c *gin.Context) {
	var in struct {
		MemberID  uint `json:"memberId" binding:"required"`
		CartItems []struct {
			ProductID uint            `json:"product_id"`
			Quantity  int             `json:"quantity"`
			Price     decimal.Decimal `json:"price"`
		} `json:"cartItems"`
		TotalAmount decimal.Decimal `json:"totalAmount"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "memberId, cartItems and totalAmount are required")
		return
	}
	if !sameMember(c, in.MemberID) {
		return
	}
	lines := make([]service.OrderLine, 0, len(in.CartItems))
	for _, it := range in.CartItems {
		lines = append(lines, service.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	o, err := h.S.Place(c.Request.Context(), in.MemberID, lines, in.TotalAmount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order placed successfully", "order_id": o.ID})
}

func (h *OrderHTTP) MemberOrders(c *gin.Context) {
	memberID, ok := uintParam(c, "memberId")
	if !ok || !sameMember(c, memberID) {
		return
	}
	orders, err := h.S.MemberOrders(c.Request.Context(), memberID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ownOrder loads the order named by the path parameter and checks the
// caller may act on it.
func (h *OrderHTTP) ownOrder(c *gin.Context, param string) (uint, bool) {
	id, ok := uintParam(c, param)
	if !ok {
		return 0, false
	}
	o, err := h.S.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return 0, false
	}
	return id, sameMember(c, o.MemberID)
}

func (h *OrderHTTP) Items(c *gin.Context) {
	id, ok := h.ownOrder(c, "orderId")
	if !ok {
		return
	}
	items, err := h.S.Items(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *OrderHTTP) UploadProof(c *gin.Context) {
	id, ok := h.ownOrder(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}
	raw, err := readUpload(fh, maxProofBytes)
	if err != nil {
		fail(c, err)
		return
	}
	url, err := h.S.AttachPaymentProof(c.Request.Context(), id, fh.Header.Get("Content-Type"), raw)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File uploaded successfully", "imageUrl": url})
}

func (h *OrderHTTP) Cancel(c *gin.Context) {
	id, ok := h.ownOrder(c, "id")
	if !ok {
		return
	}
	if err := h.S.Cancel(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Order cancelled successfully")
}

func (h *OrderHTTP) AdminOrders(c *gin.Context) {
	orders, err := h.S.AdminOrders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Status         string  `json:"status" binding:"required"`
		TrackingNumber *string `json:"tracking_number"`
		PaymentImage   *string `json:"payment_image_base64"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Order ID and status are required")
		return
	}
	err := h.S.UpdateStatus(c.Request.Context(), id, service.OrderPatch{
		Status: in.Status, TrackingNumber: in.TrackingNumber, PaymentImage: in.PaymentImage,
	})
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Order updated successfully")
}

func (h *OrderHTTP) ConfirmPayment(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Order ID and status are required")
		return
	}
	if err := h.S.ConfirmPayment(c.Request.Context(), id, in.Status); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Order confirmed, product quantities updated, and sales logged successfully.")
}

func (h *OrderHTTP) AddTracking(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		TrackingNumber string          `json:"tracking_number"`
		CarrierName    json.RawMessage `json:"carrier_name"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Order ID, tracking number, and carrier name are required")
		return
	}
	if err := h.S.AddTracking(c.Request.Context(), id, in.TrackingNumber, carrierName(in.CarrierName)); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Tracking number and carrier name updated successfully")
}

// carrierName accepts "DHL" as well as the select-widget shape
// {"value": "DHL", ...}.
func carrierName(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Value
	}
	return ""
}
