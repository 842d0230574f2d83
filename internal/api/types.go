package api

import (
	"encoding/json"

	"github.com/stackmill/storefront/internal/domain"
)

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Profile is the authenticated profile payload from GET /api/auth/me.
// FavouriteProductIDs stays raw because the backend mixes numbers and
// numeric strings in the list; domain.CoerceFavouriteIDs cleans it up.
type Profile struct {
	ID                  int64             `json:"id"`
	Username            string            `json:"username"`
	Email               string            `json:"email"`
	RoleName            string            `json:"roleName"`
	FavouriteProductIDs []json.RawMessage `json:"favouriteProductIds"`
}

// User converts the wire profile into the domain identity.
func (p *Profile) User() *domain.User {
	return &domain.User{
		ID:       p.ID,
		Username: p.Username,
		Email:    p.Email,
		RoleName: p.RoleName,
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

type addCartRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

type favouriteResponse struct {
	ID int64 `json:"id"`
}
