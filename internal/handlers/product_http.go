package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/NEPJU/APIs/internal/service"
)

// maxImageBytes caps a single uploaded product image.
const maxImageBytes = 5 << 20

type ProductHTTP struct {
	S service.CatalogService
}

func NewProductHTTP(s service.CatalogService) *ProductHTTP { return &ProductHTTP{S: s} }

type productBody struct {
	Name        string          `json:"product_name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity"`
	Category    string          `json:"category"`
	Images      []string        `json:"images_base64"`
}

// Create accepts either a JSON body with images_base64 or a multipart form
// with one or more "images" files.
func (h *ProductHTTP) Create(c *gin.Context) {
	var (
		in  productBody
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in, err = productFromForm(c)
	} else {
		err = c.ShouldBindJSON(&in)
	}
	var se *service.Error
	if errors.As(err, &se) {
		fail(c, err)
		return
	}
	if err != nil {
		badRequest(c, "Missing required fields")
		return
	}

	p, err := h.S.Create(c.Request.Context(), service.NewProduct{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Category:    in.Category,
		Images:      in.Images,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": p})
}

func productFromForm(c *gin.Context) (productBody, error) {
	in := productBody{
		Name:        c.PostForm("product_name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
	}
	if v := c.PostForm("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return in, err
		}
		in.Price = price
	}
	if v := c.PostForm("quantity"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return in, err
		}
		in.Quantity = &q
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, err
	}
	for _, fh := range form.File["images"] {
		raw, err := readUpload(fh, maxImageBytes)
		if err != nil {
			return in, err
		}
		mime := fh.Header.Get("Content-Type")
		if mime == "" {
			mime = http.DetectContentType(raw)
		}
		in.Images = append(in.Images, "data:"+mime+";base64,"+base64.StdEncoding.EncodeToString(raw))
	}
	return in, nil
}

func (h *ProductHTTP) List(c *gin.Context) {
	ps, err := h.S.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *ProductHTTP) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	p, err := h.S.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in productBody
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "All fields are required")
		return
	}
	err := h.S.Update(c.Request.Context(), id, service.ProductUpdate{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Category:    in.Category,
	})
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Product updated successfully")
}

func (h *ProductHTTP) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.S.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Product and related records deleted and IDs reordered successfully")
}
