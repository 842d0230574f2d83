package domain

import "encoding/json"

// Role names as reported by the backend profile endpoint.
// They drive role-based UI surfaces only; enforcement is server-side.
const (
	RoleCustomer = "CUSTOMER"
	RoleSeller   = "SELLER"
	RoleAdmin    = "ADMIN"
)

// User is the authenticated identity cached client-side between
// profile fetches.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleName string `json:"roleName"`
}

// FavouriteSet is the client's cached view of favourite product ids.
// It is optimistically mutated on add/remove actions and may be stale
// relative to the server if a concurrent mutation happens elsewhere;
// callers that care re-fetch the profile.
type FavouriteSet map[int64]struct{}

func (s FavouriteSet) Has(productID int64) bool {
	_, ok := s[productID]
	return ok
}

// Clone returns an independent copy so accessors can hand the set out
// without exposing internal state to mutation.
func (s FavouriteSet) Clone() FavouriteSet {
	out := make(FavouriteSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// CoerceFavouriteIDs builds a FavouriteSet from the raw favourites
// list of a profile payload. The backend is loose about element types
// (numbers and numeric strings both occur), so every element is
// coerced to an integer and duplicates collapse.
func CoerceFavouriteIDs(raw []json.RawMessage) FavouriteSet {
	set := make(FavouriteSet, len(raw))
	for _, el := range raw {
		if id, ok := coerceID(el); ok && id > 0 {
			set[id] = struct{}{}
		}
	}
	return set
}
