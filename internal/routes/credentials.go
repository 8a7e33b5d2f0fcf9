package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"premises-access-control/internal/config"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/person"
)

type credentialResponse struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	PersonType string     `json:"person_type"`
	PersonID   int64      `json:"person_id"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func credentialJSON(c *credential.Credential) credentialResponse {
	return credentialResponse{
		ID:         c.ID,
		Code:       c.Code,
		PersonType: string(c.Owner.Kind()),
		PersonID:   c.Owner.ID(),
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		ExpiresAt:  c.ExpiresAt,
	}
}

// Optional request body for credential issuance. When absent, the
// configured default validity applies.
type issueRequest struct {
	ValidityHours *uint `json:"validity_hours"`
}

func CredentialRoutes(r *gin.RouterGroup, app *App) {

	r.POST("/credentials/employee/:id", issueCredential(app, person.KindEmployee))
	r.POST("/credentials/visitor/:id", issueCredential(app, person.KindVisitor))

	r.GET("/credentials/:id", func(c *gin.Context) {
		cred, ok := findCredential(c, app)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, credentialJSON(cred))
	})

	// QR image for an issued credential. Refuses to render revoked or
	// expired credentials so stale printouts cannot circulate.
	r.GET("/credentials/:id/image", func(c *gin.Context) {
		cred, ok := findCredential(c, app)
		if !ok {
			return
		}

		if !cred.IsActive {
			AbortWithError(c, credential.ErrInactive)
			return
		}
		if cred.Expired(time.Now()) {
			AbortWithError(c, credential.ErrExpired)
			return
		}

		png, err := qrcode.Encode(cred.Code, qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			AbortWithError(c, fmt.Errorf("generating QR code: %w", err))
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})
}

func issueCredential(app *App, kind person.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: person id", ErrInvalidParameter))
			return
		}

		owner, err := person.NewRef(kind, id)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		validity := app.Config.CredentialValidity()
		var req issueRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}
		if req.ValidityHours != nil {
			validity = time.Duration(*req.ValidityHours) * time.Hour
		}

		cred, err := app.Issuer.Issue(c.Request.Context(), owner, validity)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, credentialJSON(cred))
	}
}

func findCredential(c *gin.Context, app *App) (*credential.Credential, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: credential id", ErrInvalidParameter))
		return nil, false
	}

	cred, err := app.Provider.FindCredentialByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return cred, true
}
