package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/sunshop/internal/config"
	"github.com/fsdevblog/sunshop/internal/repository/pgrepo"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/internal/service"
	"github.com/fsdevblog/sunshop/internal/transport/api"
	"github.com/fsdevblog/sunshop/internal/transport/gateway"
	gatewayclient "github.com/fsdevblog/sunshop/internal/transport/gateway/client"
	"github.com/fsdevblog/sunshop/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	"os/signal"
	"syscall"

	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	services, sErr := service.Factory(service.FactoryArgs{
		UOW:            unitOfWork,
		Logger:         a.Logger,
		JWTSecret:      []byte(a.Config.JWTUserSecret),
		Gateway:        gatewayclient.New(a.Config.GatewayAddress),
		SuccessURL:     a.Config.GatewaySuccessURL,
		CancelURL:      a.Config.GatewayCancelURL,
		GatewayTimeout: a.Config.GatewayTimeout,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:          a.Logger,
		UserService:     services.UserService,
		CatalogService:  services.CatalogService,
		CartService:     services.CartService,
		CheckoutService: services.CheckoutService,
		PaymentService:  services.PaymentService,
		JWTSecretKey:    []byte(a.Config.JWTUserSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	processor := gateway.New(services.PaymentService, a.Config.GatewayAddress, a.Logger).
		SetPollWorkers(5).       //nolint:mnd
		SetLimitPerIteration(50) //nolint:mnd

	go processor.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.ProductRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProductRepository(dbtx)
		},
		repoargs.CartRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCartRepository(dbtx)
		},
		repoargs.PaymentRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPaymentRepository(dbtx)
		},
	}

	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
