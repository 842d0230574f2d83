// Package apitest is an in-memory stand-in for the storefront
// backend, implementing just enough of its HTTP contract to test the
// client. State lives in the Server struct so tests can seed and
// inspect it directly.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/stackmill/storefront/internal/domain"
)

// AddCall records one POST /api/cart/add request.
type AddCall struct {
	Token     string
	ProductID int64
	Quantity  int64
}

// Server is the fake backend. Zero value fields get sensible
// defaults from New.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// Accepted credentials and the token they mint.
	Email    string
	Password string
	Token    string

	// Profile payload returned by /api/auth/me. RawFavourites is the
	// literal JSON list so tests can exercise mixed-type ids.
	User          domain.User
	RawFavourites string

	// Server cart state.
	Cart     []domain.CartItem
	AddCalls []AddCall
	nextCart int64
	favIDs   map[int64]int64 // favourite id -> product id
	nextFav  int64

	// FailAddAfter makes the n+1th add-to-cart call (0-based) return
	// HTTP 500; negative disables the failure.
	FailAddAfter int
}

// New starts the fake backend. Callers own Close.
func New() *Server {
	s := &Server{
		Email:         "buyer@example.com",
		Password:      "hunter2",
		Token:         "test-token",
		User:          domain.User{ID: 1, Username: "buyer", Email: "buyer@example.com", RoleName: domain.RoleCustomer},
		RawFavourites: "[]",
		favIDs:        make(map[int64]int64),
		nextFav:       100,
		nextCart:      1,
		FailAddAfter:  -1,
	}

	e := echo.New()
	e.HideBanner = true

	e.POST("/api/auth/login", s.handleLogin)
	e.GET("/api/auth/me", s.handleMe)
	e.POST("/api/cart/add", s.handleCartAdd)
	e.GET("/api/cart", s.handleCart)
	e.DELETE("/api/cart/clear", s.handleCartClear)
	e.DELETE("/api/cart/:id", s.handleCartRemove)
	e.POST("/api/favourite/add", s.handleFavAdd)
	e.DELETE("/api/favourite/delete/:id", s.handleFavDelete)
	e.GET("/api/products", s.handleProducts)
	e.GET("/api/products/:id", s.handleProduct)

	s.Server = httptest.NewServer(e)
	return s
}

func (s *Server) authorized(c echo.Context) bool {
	if c.QueryParam("token") == s.Token {
		return true
	}
	header := c.Request().Header.Get("Authorization")
	return strings.TrimPrefix(header, "Bearer ") == s.Token && header != ""
}

func (s *Server) handleLogin(c echo.Context) error {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if creds.Email != s.Email || creds.Password != s.Password {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad credentials"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": s.Token})
}

func (s *Server) handleMe(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	return c.JSONBlob(http.StatusOK, []byte(`{
		"id": `+strconv.FormatInt(s.User.ID, 10)+`,
		"username": "`+s.User.Username+`",
		"email": "`+s.User.Email+`",
		"roleName": "`+s.User.RoleName+`",
		"favouriteProductIds": `+s.RawFavourites+`
	}`))
}

func (s *Server) handleCartAdd(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int64 `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID <= 0 || req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item"})
	}

	if s.FailAddAfter >= 0 && len(s.AddCalls) >= s.FailAddAfter {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage down"})
	}

	s.AddCalls = append(s.AddCalls, AddCall{
		Token:     c.QueryParam("token"),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})

	// Additive on top of any existing line for the product.
	for i := range s.Cart {
		if s.Cart[i].Product.ID == req.ProductID {
			s.Cart[i].Quantity += req.Quantity
			return c.NoContent(http.StatusOK)
		}
	}
	s.Cart = append(s.Cart, domain.CartItem{
		ID:       s.nextCart,
		Product:  domain.Product{ID: req.ProductID, Name: "Product " + strconv.FormatInt(req.ProductID, 10), Price: 10},
		Quantity: req.Quantity,
	})
	s.nextCart++
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	return c.JSON(http.StatusOK, s.Cart)
}

func (s *Server) handleCartRemove(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart item id"})
	}
	for i := range s.Cart {
		if s.Cart[i].ID == id {
			s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
			return c.NoContent(http.StatusOK)
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
}

func (s *Server) handleCartClear(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	s.Cart = nil
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleFavAdd(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	productID, err := strconv.ParseInt(c.QueryParam("productId"), 10, 64)
	if err != nil || productID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	s.nextFav++
	s.favIDs[s.nextFav] = productID
	return c.JSON(http.StatusCreated, echo.Map{"id": s.nextFav})
}

func (s *Server) handleFavDelete(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid favourite id"})
	}
	if _, ok := s.favIDs[id]; !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "favourite not found"})
	}
	delete(s.favIDs, id)
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, []domain.Product{
		{ID: 1, Slug: "mug", Name: "Mug", Price: 12.5, ImageURL: "/img/mug.png"},
		{ID: 2, Slug: "tee", Name: "Tee", Price: 24, ImageURL: "/img/tee.png"},
	})
}

func (s *Server) handleProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	if id > 2 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, domain.Product{
		ID:    id,
		Slug:  "product-" + strconv.FormatInt(id, 10),
		Name:  "Product " + strconv.FormatInt(id, 10),
		Price: 10 * float64(id),
	})
}

// FavouriteCount reports how many favourites the fake currently holds.
func (s *Server) FavouriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.favIDs)
}
