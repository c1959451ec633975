package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
	"github.com/NEPJU/APIs/internal/store"
)

type AuthConfig struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
	// AdminEmails are treated as admins regardless of their role column.
	AdminEmails []string
}

type Registration struct {
	Username string
	Email    string
	Password string
}

// ProfilePatch carries the editable profile columns; nil leaves a column
// unchanged.
type ProfilePatch struct {
	Name        *string
	Address     *string
	PhoneNumber *string
	ProfileImg  *string
}

type Availability struct {
	UsernameTaken bool `json:"usernameTaken"`
	EmailTaken    bool `json:"emailTaken"`
}

type AuthService interface {
	Register(ctx context.Context, r Registration) (model.Session, error)
	Login(ctx context.Context, identifier, password string) (model.Session, error)
	// Authenticate resolves a session token to the user it was issued for.
	Authenticate(ctx context.Context, token string) (model.User, error)
	Availability(ctx context.Context, username, email string) (Availability, error)
	Profile(ctx context.Context, memberID uint) (model.User, error)
	UpdateProfile(ctx context.Context, memberID uint, p ProfilePatch) error
}

type authService struct {
	db     *gorm.DB
	cfg    AuthConfig
	admins map[string]bool
}

func NewAuthService(db *gorm.DB, cfg AuthConfig) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &authService{db: db, cfg: cfg, admins: admins}
}

func (a *authService) Register(ctx context.Context, r Registration) (model.Session, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return model.Session{}, validationf("username, email and password are required")
	}

	db := a.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.User{}).Where("username = ? OR email = ?", r.Username, r.Email).Count(&n).Error; err != nil {
		return model.Session{}, err
	}
	if n > 0 {
		return model.Session{}, duplicatef("Username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), a.cfg.BcryptCost)
	if err != nil {
		return model.Session{}, err
	}
	u := model.User{Username: r.Username, Email: r.Email, Password: string(hash), Role: model.RoleUser}
	if err := db.Create(&u).Error; err != nil {
		if store.IsDuplicate(err) {
			return model.Session{}, duplicatef("Username or email already exists")
		}
		return model.Session{}, err
	}
	return a.session(u)
}

// Login accepts either the username or the email as identifier.
func (a *authService) Login(ctx context.Context, identifier, password string) (model.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return model.Session{}, validationf("username or email and password are required")
	}

	var u model.User
	err := a.db.WithContext(ctx).Where("username = ? OR email = ?", identifier, identifier).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Session{}, authf("Invalid username or email")
	}
	if err != nil {
		return model.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return model.Session{}, authf("Invalid password")
	}
	return a.session(u)
}

func (a *authService) Authenticate(ctx context.Context, token string) (model.User, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.User{}, authf("invalid session")
	}
	if claims["typ"] != "session" {
		return model.User{}, authf("invalid token type")
	}
	idFloat, ok := claims["sub"].(float64)
	if !ok || idFloat <= 0 {
		return model.User{}, authf("invalid sub")
	}

	var u model.User
	err = a.db.WithContext(ctx).Where("member_id = ?", uint(idFloat)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, authf("invalid session")
	}
	if err != nil {
		return model.User{}, err
	}
	u.Role = a.role(u)
	return u, nil
}

func (a *authService) Availability(ctx context.Context, username, email string) (Availability, error) {
	var out Availability
	db := a.db.WithContext(ctx)
	if username = strings.TrimSpace(username); username != "" {
		var n int64
		if err := db.Model(&model.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
			return out, err
		}
		out.UsernameTaken = n > 0
	}
	if email = strings.TrimSpace(email); email != "" {
		var n int64
		if err := db.Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return out, err
		}
		out.EmailTaken = n > 0
	}
	return out, nil
}

func (a *authService) Profile(ctx context.Context, memberID uint) (model.User, error) {
	var u model.User
	err := a.db.WithContext(ctx).Where("member_id = ?", memberID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, notFoundf("User not found")
	}
	return u, err
}

func (a *authService) UpdateProfile(ctx context.Context, memberID uint, p ProfilePatch) error {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.PhoneNumber != nil {
		cols["phone_number"] = *p.PhoneNumber
	}
	if p.ProfileImg != nil {
		cols["profileimg"] = *p.ProfileImg
	}
	if len(cols) == 0 {
		return validationf("nothing to update")
	}
	res := a.db.WithContext(ctx).Model(&model.User{}).Where("member_id = ?", memberID).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("User not found")
	}
	return nil
}

func (a *authService) role(u model.User) string {
	if u.Role == model.RoleAdmin || a.admins[strings.ToLower(u.Email)] {
		return model.RoleAdmin
	}
	return model.RoleUser
}

func (a *authService) session(u model.User) (model.Session, error) {
	role := a.role(u)
	exp := time.Now().Add(a.cfg.TTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID,
		"role": role,
		"typ":  "session",
		"exp":  exp.Unix(),
	})
	tok, err := t.SignedString([]byte(a.cfg.Secret))
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: tok, UserID: u.ID, Username: u.Username, Role: role, Expires: exp}, nil
}
