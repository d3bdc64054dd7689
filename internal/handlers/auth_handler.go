package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
	"github.com/insiderbookings/backoffice/pkg/jwt"
	"github.com/insiderbookings/backoffice/pkg/mailer"
)

// AuthHandler handles registration, login and the magic-link flow
type AuthHandler struct {
	userRepo    *database.UserRepository
	staffRepo   *database.StaffRepository
	outsideRepo *database.OutsideBookingRepository
	codeService *services.CodeService
	audit       *services.AuditService
	jwtService  *jwt.Service
	mail        *mailer.Mailer
	logger      *logrus.Logger

	bcryptCost int
	clientURL  string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	userRepo *database.UserRepository,
	staffRepo *database.StaffRepository,
	outsideRepo *database.OutsideBookingRepository,
	codeService *services.CodeService,
	audit *services.AuditService,
	jwtService *jwt.Service,
	mail *mailer.Mailer,
	logger *logrus.Logger,
	bcryptCost int,
	clientURL string,
) *AuthHandler {
	return &AuthHandler{
		userRepo:    userRepo,
		staffRepo:   staffRepo,
		outsideRepo: outsideRepo,
		codeService: codeService,
		audit:       audit,
		jwtService:  jwtService,
		mail:        mail,
		logger:      logger,
		bcryptCost:  bcryptCost,
		clientURL:   clientURL,
	}
}

// RegisterUser creates a guest account
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.userRepo.GetByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := h.userRepo.Create(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := h.jwtService.GenerateAccessToken(user.ID, jwt.ActorUser, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// RegisterStaff creates a staff account and links it to hotels with fresh
// front-desk codes. Manager only.
// @Router /api/v1/auth/staff/register [post]
func (h *AuthHandler) RegisterStaff(c *gin.Context) {
	var req models.RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.staffRepo.GetRole(req.RoleID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown staff role"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load role"})
		return
	}

	if _, err := h.staffRepo.GetByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	staff := &models.Staff{
		RoleID:       req.RoleID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		IsActive:     true,
	}

	// Staff codes are generated up front so the whole registration can run
	// in one transaction: a failure on any hotel leaves no account behind.
	now := time.Now()
	links := make([]*models.HotelStaff, 0, len(req.HotelIDs))
	codes := make([]*models.DiscountCode, 0, len(req.HotelIDs))
	for i, hotelID := range req.HotelIDs {
		value, err := h.codeService.NewStaffCode(hotelID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate staff code"})
			return
		}

		hid := hotelID
		pct := role.DefaultDiscountPct
		startsAt := now

		links = append(links, &models.HotelStaff{
			HotelID:   hotelID,
			StaffCode: value,
			IsPrimary: i == 0,
		})
		// Each staff code doubles as a discount code with the role's
		// default percentage, uncapped and open ended.
		codes = append(codes, &models.DiscountCode{
			Code:       value,
			HotelID:    &hid,
			Percentage: &pct,
			StartsAt:   &startsAt,
			Active:     true,
		})
	}

	if err := h.staffRepo.RegisterWithHotels(staff, links, codes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create staff"})
		return
	}

	hotels := make([]models.HotelStaff, 0, len(links))
	for _, link := range links {
		hotels = append(hotels, *link)
	}

	c.JSON(http.StatusCreated, gin.H{"staff": staff, "hotels": hotels, "discountCodes": codes})
}

// LoginUser signs a guest in
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			h.audit.RecordLogin("user", nil, req.Email, false, c.ClientIP(), c.Request.UserAgent())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.audit.RecordLogin("user", &user.ID, req.Email, false, c.ClientIP(), c.Request.UserAgent())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	token, err := h.jwtService.GenerateAccessToken(user.ID, jwt.ActorUser, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.audit.RecordLogin("user", &user.ID, req.Email, true, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// LoginStaff signs a staff member in
// @Router /api/v1/auth/staff/login [post]
func (h *AuthHandler) LoginStaff(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	staff, err := h.staffRepo.GetByEmail(req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			h.audit.RecordLogin("staff", nil, req.Email, false, c.ClientIP(), c.Request.UserAgent())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up staff"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		h.audit.RecordLogin("staff", &staff.ID, req.Email, false, c.ClientIP(), c.Request.UserAgent())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !staff.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	token, err := h.jwtService.GenerateAccessToken(staff.ID, jwt.ActorStaff, staff.RoleName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.audit.RecordLogin("staff", &staff.ID, req.Email, true, c.ClientIP(), c.Request.UserAgent())
	c.JSON(http.StatusOK, gin.H{"token": token, "staff": staff})
}

// AutoSignup creates or reuses a guest account for an imported reservation
// and emails a magic link so the guest can choose a password. The placeholder
// password is random and never disclosed.
// @Router /api/v1/auth/auto-signup [post]
func (h *AuthHandler) AutoSignup(c *gin.Context) {
	var req models.AutoSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created := false
	user, err := h.userRepo.GetByEmail(req.Email)
	if err == sql.ErrNoRows {
		placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), h.bcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}

		user = &models.User{
			Name:         strings.TrimSpace(req.FirstName + " " + req.LastName),
			Email:        strings.ToLower(req.Email),
			PasswordHash: string(placeholder),
			Phone:        req.Phone,
			IsActive:     true,
		}
		if err := h.userRepo.Create(user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}
		created = true
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	confirmation := ""
	if req.OutsideBookingID != nil {
		if err := h.outsideRepo.AttachUser(*req.OutsideBookingID, user.ID); err != nil && err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link booking"})
			return
		}
		if booking, err := h.outsideRepo.GetByID(*req.OutsideBookingID); err == nil {
			confirmation = booking.BookingConfirmation
		}
	}

	if created {
		magic, err := h.jwtService.GenerateSetPasswordToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate link"})
			return
		}

		link := fmt.Sprintf("%s/set-password?token=%s", h.clientURL, magic)
		if err := h.mail.SendMagicLink(user.Email, user.Name, confirmation, link); err != nil {
			h.logger.WithError(err).WithField("to", user.Email).Warn("failed to send magic link")
		}
	}

	token, err := h.jwtService.GenerateAccessToken(user.ID, jwt.ActorUser, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"token": token, "user": user, "created": created})
}

// SetPassword finishes the magic-link flow
// @Router /api/v1/auth/set-password [post]
func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	claims, err := h.jwtService.ValidateSetPasswordToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired link"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := h.userRepo.UpdatePassword(claims.ActorID, string(hash)); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// ValidateSetPasswordToken lets the set-password page check a magic-link
// token before showing the form
// @Router /api/v1/auth/validate-token/:token [get]
func (h *AuthHandler) ValidateSetPasswordToken(c *gin.Context) {
	claims, err := h.jwtService.ValidateSetPasswordToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "Invalid or expired link"})
		return
	}

	user, err := h.userRepo.GetByID(claims.ActorID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "email": user.Email})
}

// ListRoles returns the staff roles available for registration
func (h *AuthHandler) ListRoles(c *gin.Context) {
	roles, err := h.staffRepo.ListRoles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// Me returns the authenticated actor's account
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, exists := middleware.GetActorContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if actor.Type == jwt.ActorStaff {
		staff, err := h.staffRepo.GetByID(actor.ID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Staff not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load staff"})
			return
		}

		hotels, err := h.staffRepo.ListHotels(staff.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load hotels"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"staff": staff, "hotels": hotels})
		return
	}

	user, err := h.userRepo.GetByID(actor.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
