package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"coffee-shop/handler"
	"coffee-shop/internal/config"
	"coffee-shop/internal/integrations/genai"
	"coffee-shop/internal/integrations/paramstore"
	"coffee-shop/internal/notify"
	"coffee-shop/internal/repository"
	"coffee-shop/internal/session"
	"coffee-shop/internal/shop"
	"coffee-shop/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Configuration (read only here) ----
	configPath := os.Getenv("COFFEESHOP_CONFIG")
	if configPath == "" {
		configPath = "coffeeshop.yml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	setupLogging(cfg.Log)

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS config")
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create SSM client")
	}
	dynamoClient := awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})
	store, err := repository.New(dynamoClient, cfg.DynamoDB.Table)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create store")
	}

	genaiOpts := []genai.Option{genai.WithBaseURL(cfg.GenAI.BaseURL)}
	if cfg.GenAI.APIKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(cfg.GenAI.APIKey))
	}
	oracle, err := genai.NewClient(ssmClient, tokenParam(cfg.Params.Prefix), cfg.GenAI.Model, genaiOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create genai client")
	}

	// ---- Order notifications ----
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	publisher, err := notify.NewPublisher(pubsub)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create order publisher")
	}
	hub := notify.NewHub()

	// ---- Shop services ----
	products, err := shop.NewProducts(store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create product service")
	}
	accounts, err := shop.NewAccounts(store, cfg.Admin.Emails)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create account service")
	}
	orders, err := shop.NewOrders(store, store, store, publisher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create order service")
	}
	admin, err := shop.NewAdmin(store, store, store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create admin service")
	}
	contacts, err := shop.NewContacts(store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create contact service")
	}

	if cfg.Catalog.Seed {
		defaults, err := shop.DefaultCatalog()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse default catalog")
		}
		if _, err := products.Seed(ctx, defaults); err != nil {
			log.Fatal().Err(err).Msg("failed to seed catalog")
		}
	}

	// ---- Chatbot ----
	catalog, err := usecase.NewCatalog(store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create catalog")
	}
	if err := catalog.Refresh(ctx); err != nil {
		// Chat replies fall back to the trouble message until a refresh succeeds.
		log.Error().Err(err).Msg("initial catalog load failed")
	}
	recommender, err := usecase.NewRecommender(oracle, catalog, cfg.GenAI.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create recommender")
	}
	sessions := session.NewMemoryStore(cfg.Sessions.Capacity, cfg.Sessions.TTL)
	chat, err := usecase.NewChatService(sessions, catalog, recommender, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chat service")
	}

	// ---- Handler ----
	svc := handler.Services{
		Chat:     chat,
		Accounts: accounts,
		Products: products,
		Orders:   orders,
		Admin:    admin,
		Contacts: contacts,
		Health:   store,
	}
	lambdaMode := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	if !lambdaMode {
		svc.OrderFeed = hub
	}
	h, err := handler.NewHandler(svc, handler.WithAllowedOrigins(cfg.HTTP.AllowedOrigins...))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create handler")
	}

	if lambdaMode {
		lambda.Start(h.Handle)
		return
	}

	if err := serve(ctx, cfg.HTTP.Addr, h, hub, pubsub); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// serve runs the HTTP server and the order broadcaster until ctx is done.
func serve(ctx context.Context, addr string, h http.Handler, hub *notify.Hub, pubsub *gochannel.GoChannel) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(ctx, pubsub)
	})
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("coffee shop server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		hub.CloseAll()
		return errors.Join(err, pubsub.Close())
	})
	return g.Wait()
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func tokenParam(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/genai-token"
}
