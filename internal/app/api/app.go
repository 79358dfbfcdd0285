package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/restaurant-radio/internal/app/infra"
	"github.com/magabrotheeeer/restaurant-radio/internal/changefeed"
	"github.com/magabrotheeeer/restaurant-radio/internal/config"
	"github.com/magabrotheeeer/restaurant-radio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/jwt"
	"github.com/magabrotheeeer/restaurant-radio/internal/lib/sl"
	"github.com/magabrotheeeer/restaurant-radio/internal/paymentprovider"
	"github.com/magabrotheeeer/restaurant-radio/internal/radiobrowser"
	"github.com/magabrotheeeer/restaurant-radio/internal/rabbitmq"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/account"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/billing"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/favorites"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/referral"
	"github.com/magabrotheeeer/restaurant-radio/internal/services/stations"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение и открытые им ресурсы.
type App struct {
	server *http.Server
	logger *slog.Logger
	res    *infra.Resources
	broker *infra.Broker
	inline *changefeed.Inline
}

// New открывает хранилище, кэш и брокер, собирает сервисы и маршруты.
// Без адреса RabbitMQ события изменения учётных записей обрабатываются
// в этом же процессе.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	res, err := infra.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, res: res}

	var publisher changefeed.Publisher
	if cfg.RabbitMQURL != "" {
		broker, err := infra.OpenBroker(ctx, cfg.RabbitMQ)
		if err != nil {
			res.Close(logger)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.broker = broker
		res.Checks["rabbitmq"] = func(context.Context) error {
			if broker.Conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
		publisher = rabbitmq.NewPublisher(broker.Channel)
	} else {
		logger.Info("rabbitmq url is empty, user events are handled in process")
		app.inline = changefeed.NewInline(logger)
		publisher = app.inline
	}

	feed := changefeed.New(res.Store, publisher, logger)
	if app.inline != nil {
		app.inline.Subscribe(referral.New(feed, logger))
	}

	accountService := account.New(feed, res.Cache, logger)
	feed.OnChange(accountService.InvalidateUser)

	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		logger.Warn("stripe keys are not configured, billing calls will fail")
	}
	provider := paymentprovider.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	deps := Deps{
		Account:   accountService,
		Billing:   billing.New(feed, provider, billingOptions(cfg.Stripe), logger),
		Stations:  stations.New(radiobrowser.NewClient(cfg.RadioBrowserURL, cfg.UserAgent, cfg.RadioBrowserTimeout), res.Cache, logger),
		Favorites: favorites.New(res.Store, logger),
		Verifier:  provider,
		Tokens:    jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.Issuer),
		Limiter:   middlewarectx.NewLimiter(cfg.RPS, cfg.Burst),
		Checks:    res.Checks,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func billingOptions(cfg config.Stripe) billing.Options {
	plans := make(map[string]billing.Plan, len(cfg.Plans))
	for name, p := range cfg.Plans {
		plans[name] = billing.Plan{PriceID: p.PriceID, Mode: p.Mode}
	}
	return billing.Options{
		SuccessURL: cfg.SuccessURL,
		CancelURL:  cfg.CancelURL,
		ReturnURL:  cfg.ReturnURL,
		Plans:      plans,
	}
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

// close дожидается обработчиков событий и закрывает ресурсы.
func (a *App) close() {
	if a.inline != nil {
		a.inline.Wait()
	}
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq", sl.Err(err))
		}
	}
	a.res.Close(a.logger)
}
