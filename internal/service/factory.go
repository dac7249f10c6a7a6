package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/sunshop/internal/service/psswd"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

type AppServices struct {
	UserService     *UserService
	CatalogService  *CatalogService
	CartService     *CartService
	CheckoutService *CheckoutService
	PaymentService  *PaymentService
}

type FactoryArgs struct {
	UOW            uow.UOW
	Logger         *logrus.Logger
	JWTSecret      []byte
	Gateway        PaymentGateway
	SuccessURL     string
	CancelURL      string
	GatewayTimeout time.Duration
}

func Factory(args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(args.UOW, args.JWTSecret, psswd.PasswordHash(""))
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	catalogService, catalogServiceErr := NewCatalogService(args.UOW)
	if catalogServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", catalogServiceErr.Error())
	}

	cartService, cartServiceErr := NewCartService(args.UOW)
	if cartServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", cartServiceErr.Error())
	}

	checkoutService, checkoutServiceErr := NewCheckoutService(CheckoutServiceArgs{
		UOW:            args.UOW,
		Gateway:        args.Gateway,
		SuccessURL:     args.SuccessURL,
		CancelURL:      args.CancelURL,
		GatewayTimeout: args.GatewayTimeout,
	})
	if checkoutServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", checkoutServiceErr.Error())
	}

	paymentService, paymentServiceErr := NewPaymentService(args.UOW, args.Logger)
	if paymentServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", paymentServiceErr.Error())
	}

	return &AppServices{
		UserService:     userService,
		CatalogService:  catalogService,
		CartService:     cartService,
		CheckoutService: checkoutService,
		PaymentService:  paymentService,
	}, nil
}
