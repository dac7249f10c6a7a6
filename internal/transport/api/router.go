package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/sunshop/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup          = "/api"
	RegisterRoute       = "/user/register"
	LoginRoute          = "/user/login"
	ProductsRoute       = "/products"
	CartRoute           = "/cart"
	CheckoutRoute       = "/checkout"
	SubscriptionRoute   = "/subscription"
	PaymentWebhookRoute = "/payments/webhook"
)

type RouterArgs struct {
	Logger          *logrus.Logger
	UserService     UserServicer
	CatalogService  CatalogServicer
	CartService     CartServicer
	CheckoutService CheckoutServicer
	PaymentService  PaymentServicer
	JWTSecretKey    []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	productsHandler := NewProductsHandler(args.CatalogService)
	cartHandler := NewCartHandler(args.CartService)
	checkoutHandler := NewCheckoutHandler(args.CheckoutService)
	paymentsHandler := NewPaymentsHandler(args.PaymentService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.GET(ProductsRoute, productsHandler.Index)
	// вебхук аутентифицируется не юзерским токеном, поэтому вне auth-группы.
	api.POST(PaymentWebhookRoute, paymentsHandler.Webhook)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(CartRoute, cartHandler.Index)
	api.POST(CartRoute, cartHandler.Create)

	api.POST(CheckoutRoute, checkoutHandler.Create)
	api.GET(SubscriptionRoute, paymentsHandler.SubscriptionStatus)
	return r
}
