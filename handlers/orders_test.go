package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/loomline/loomline-backend-go/apperr"
	"github.com/loomline/loomline-backend-go/middleware"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

func newOrderContext(t *testing.T, body string) echo.Context {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, primitive.NewObjectID())
	return c
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	c := newOrderContext(t, `{"orderItems": [], "totalPrice": 0}`)

	err := CreateOrder(c)
	assertKind(t, err, apperr.KindValidation)
}

func TestCreateOrderRejectsMissingItems(t *testing.T) {
	c := newOrderContext(t, `{"totalPrice": 100}`)

	err := CreateOrder(c)
	assertKind(t, err, apperr.KindValidation)
}

func TestCreateOrderRejectsIncompleteAddress(t *testing.T) {
	pid := primitive.NewObjectID().Hex()
	body := `{
		"orderItems": [{"productId": "` + pid + `", "name": "Oxford Shirt", "quantity": 1, "price": 750, "size": "M"}],
		"shippingAddress": {"street": "1 Main St", "city": "Springfield"},
		"paymentMethod": "card",
		"itemsPrice": 750, "taxPrice": 60, "shippingPrice": 0, "totalPrice": 810
	}`
	c := newOrderContext(t, body)

	err := CreateOrder(c)
	assertKind(t, err, apperr.KindValidation)
}

func TestCreateOrderRequiresSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := CreateOrder(c)
	assertKind(t, err, apperr.KindAuth)
}
