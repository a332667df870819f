package api

import (
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/nilbx/sponsorhub/internal/api/middleware"
	"github.com/nilbx/sponsorhub/internal/errs"
	"github.com/nilbx/sponsorhub/internal/services"
)

// APIServer is the HTTP front of the platform. Chain, pinning, and
// integration services may be nil when the deployment runs without the
// corresponding credentials; their routes then answer 503.
type APIServer struct {
	app         *fiber.App
	ledger      services.LedgerService
	fees        services.FeeService
	evm         services.EvmService
	pinning     services.PinningService
	integration services.IntegrationService
	authSecret  string
	port        int
}

type ServerDeps struct {
	Ledger      services.LedgerService
	Fees        services.FeeService
	Evm         services.EvmService
	Pinning     services.PinningService
	Integration services.IntegrationService
	AuthSecret  string
}

func NewAPIServer(deps ServerDeps) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:         app,
		ledger:      deps.Ledger,
		fees:        deps.Fees,
		evm:         deps.Evm,
		pinning:     deps.Pinning,
		integration: deps.Integration,
		authSecret:  deps.AuthSecret,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Chain routes
	s.app.Post("/mint-nft", s.handleMintNFT)
	s.app.Post("/create-task", s.handleCreateTask)
	s.app.Post("/approve-task", s.handleApproveTask)
	s.app.Get("/task/:task_id", s.handleGetTask)
	s.app.Get("/athlete-nfts/:athlete_address", s.handleAthleteNFTs)

	// Pinning routes
	s.app.Post("/upload-metadata", s.handleUploadMetadata)
	s.app.Post("/upload-json", s.handleUploadJSON)

	// Fee routes
	s.app.Post("/calculate-fees", s.handleCalculateFees)
	s.app.Post("/deploy-contract", s.handleDeployContract)
	s.app.Post("/subscribe", s.handleSubscribe)
	s.app.Post("/premium-feature", s.handlePremiumFeature)
	s.app.Get("/fee-analytics", s.handleFeeAnalytics)
	s.app.Get("/fee-structure", s.handleFeeStructure)

	// Integration routes require a bearer token
	auth := middleware.AuthMiddleware(middleware.AuthConfig{Secret: s.authSecret})
	s.app.Post("/create-sponsorship", auth, s.handleCreateSponsorship)
	s.app.Post("/create-athlete-nft", auth, s.handleCreateAthleteNFT)
	s.app.Get("/athlete-assets/:athlete_address", auth, s.handleAthleteAssets)

	// Ledger admin routes
	s.app.Post("/users", s.handleCreateUser)
	s.app.Get("/users/:user_id", s.handleGetUser)
	s.app.Post("/contracts", s.handleCreateContract)
	s.app.Get("/contracts/:contract_id", s.handleGetContract)
	s.app.Get("/users/:user_id/contracts", s.handleListUserContracts)
	s.app.Post("/contracts/:contract_id/transactions", s.handleLogTransaction)
	s.app.Get("/contracts/:contract_id/transactions", s.handleListContractTransactions)
	s.app.Get("/wallets/:wallet_address/transactions", s.handleListWalletTransactions)
	s.app.Get("/users/:user_id/fees", s.handleListUserFees)
	s.app.Get("/fees/:category", s.handleListFeesInRange)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "sponsorhub"})
	})
}

// Start starts the server on the configured port, or on a random
// available port when port is 0.
func (s *APIServer) Start(port int) (int, error) {
	if port == 0 {
		listener, err := net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to find available port: %w", err)
		}
		port = listener.Addr().(*net.TCPAddr).Port
		listener.Close()
	}
	s.port = port

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Error starting API server: %v\n", err)
		}
	}()

	return port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App exposes the underlying fiber app for tests.
func (s *APIServer) App() *fiber.App {
	return s.app
}

// respondSuccess writes the success envelope, merging extra into the
// top-level object.
func respondSuccess(c *fiber.Ctx, extra fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

// respondError maps the service error taxonomy to HTTP statuses and
// writes the failure envelope.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, errs.ErrUpstreamFailure):
		status = fiber.StatusBadGateway
	case errors.Is(err, errs.ErrStoreUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func respondBadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func respondUnavailable(c *fiber.Ctx, component string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"error":   component + " is not configured",
	})
}
