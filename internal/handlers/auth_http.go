package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/service"
)

type AuthHTTP struct {
	S service.AuthService
}

func NewAuthHTTP(s service.AuthService) *AuthHTTP { return &AuthHTTP{S: s} }

func (h *AuthHTTP) Register(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "username, email and password are required")
		return
	}
	sess, err := h.S.Register(c.Request.Context(), service.Registration{
		Username: in.Username, Email: in.Email, Password: in.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	setSessionCookie(c, sess)
	c.JSON(http.StatusOK, sess)
}

// Login takes the username or the email; the client may send either field.
func (h *AuthHTTP) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "password is required")
		return
	}
	id := in.Username
	if id == "" {
		id = in.Email
	}
	sess, err := h.S.Login(c.Request.Context(), id, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	setSessionCookie(c, sess)
	c.JSON(http.StatusOK, sess)
}

func (h *AuthHTTP) Logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", true, true)
	message(c, http.StatusOK, "Logged out successfully")
}

func (h *AuthHTTP) Status(c *gin.Context) {
	tok := bearerToken(c)
	if tok == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"isLoggedIn": false})
		return
	}
	u, err := h.S.Authenticate(c.Request.Context(), tok)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"isLoggedIn": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"isLoggedIn": true,
		"user": gin.H{
			"member_id":    u.ID,
			"username":     u.Username,
			"email":        u.Email,
			"address":      u.Address,
			"phone_number": u.PhoneNumber,
			"role":         u.Role,
		},
	})
}

func (h *AuthHTTP) Check(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Email and username are required")
		return
	}
	av, err := h.S.Availability(c.Request.Context(), in.Username, in.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, av)
}

func (h *AuthHTTP) CheckUsername(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "username is required")
		return
	}
	av, err := h.S.Availability(c.Request.Context(), in.Username, "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isTaken": av.UsernameTaken})
}

func (h *AuthHTTP) CheckEmail(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "email is required")
		return
	}
	av, err := h.S.Availability(c.Request.Context(), "", in.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isTaken": av.EmailTaken})
}

func (h *AuthHTTP) Profile(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok || !sameMember(c, id) {
		return
	}
	u, err := h.S.Profile(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AuthHTTP) UpdateProfile(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok || !sameMember(c, id) {
		return
	}
	var in struct {
		Name        *string `json:"name"`
		Address     *string `json:"address"`
		PhoneNumber *string `json:"phone_number"`
		ProfileImg  *string `json:"profileimg"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad json")
		return
	}
	err := h.S.UpdateProfile(c.Request.Context(), id, service.ProfilePatch{
		Name: in.Name, Address: in.Address, PhoneNumber: in.PhoneNumber, ProfileImg: in.ProfileImg,
	})
	if err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "User updated successfully")
}

func setSessionCookie(c *gin.Context, sess model.Session) {
	c.SetCookie(sessionCookie, sess.Token, int(time.Until(sess.Expires).Seconds()), "/", "", true, true)
}
