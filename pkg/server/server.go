// Package server exposes the fetch pipeline over HTTP: a health probe
// and a synchronous fetch-and-store endpoint.
package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"review-scraper/pkg/models"
	"review-scraper/pkg/utils"
)

// Pipeline is the fetch orchestrator surface the server drives.
type Pipeline interface {
	FetchProductAndReviews(ctx context.Context, rawURL string) (*models.FetchResult, error)
}

// Sink persists fetch results.
type Sink interface {
	UpsertProduct(ctx context.Context, p models.Product) (int64, error)
	InsertReviews(ctx context.Context, productID int64, reviews []models.Review) (int64, error)
}

type Server struct {
	app      *fiber.App
	pipeline Pipeline
	sink     Sink
	capacity int
	log      *logrus.Entry
}

type fetchRequest struct {
	ProductURL string `json:"product_url"`
}

type fetchResponse struct {
	ProductURL string `json:"product_url"`
	ProductID  int64  `json:"product_id"`
	Title      string `json:"title"`
	Pages      int    `json:"pages"`
	Reviews    int    `json:"reviews"`
	Inserted   int64  `json:"inserted"`
}

func New(pipeline Pipeline, sink Sink, capacity int, log *logrus.Entry) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			// Fetches render whole pagination chains; fiber must not
			// cut them off with its default timeouts.
			ReadTimeout:  0,
			WriteTimeout: 0,
		}),
		pipeline: pipeline,
		sink:     sink,
		capacity: capacity,
		log:      log,
	}

	s.app.Get("/health", s.handleHealth)
	s.app.Post("/fetch", s.handleFetch)
	return s
}

// App exposes the fiber instance for tests and for Listen/Shutdown.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":                   true,
		"max_concurrent_pages": s.capacity,
	})
}

func (s *Server) handleFetch(c *fiber.Ctx) error {
	var req fetchRequest
	if err := c.BodyParser(&req); err != nil || req.ProductURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must be JSON with a non-empty product_url",
		})
	}

	log := s.log.WithField("url", req.ProductURL)

	result, err := s.pipeline.FetchProductAndReviews(c.Context(), req.ProductURL)
	if err != nil {
		status, msg := statusFor(err)
		log.WithError(err).WithField("category", utils.CategorizeError(err)).Warn("Fetch failed")
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	productID, err := s.sink.UpsertProduct(c.Context(), result.Product)
	if err != nil {
		log.WithError(err).Error("Storing product failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "storing product failed"})
	}
	inserted, err := s.sink.InsertReviews(c.Context(), productID, result.Reviews)
	if err != nil {
		log.WithError(err).Error("Storing reviews failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "storing reviews failed"})
	}

	return c.JSON(fetchResponse{
		ProductURL: result.Product.URL,
		ProductID:  productID,
		Title:      result.Product.Title,
		Pages:      result.Pages,
		Reviews:    len(result.Reviews),
		Inserted:   inserted,
	})
}

// statusFor maps pipeline errors onto HTTP statuses the caller can act
// on: 502 for upstream refusing or breaking, 504 for upstream slowness,
// 503 when this service is out of page capacity.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, utils.ErrBlocked):
		return fiber.StatusBadGateway,
			"site served a challenge page; warm the browser profile by solving it once interactively, then retry"
	case errors.Is(err, utils.ErrTimeout):
		return fiber.StatusGatewayTimeout, "site did not respond within the fetch budget"
	case errors.Is(err, utils.ErrFetchFailed) && utils.IsTimeout(err):
		// Second-attempt timeouts keep the retryable signal.
		return fiber.StatusGatewayTimeout, "site did not respond within the fetch budget, even after a session restart"
	case errors.Is(err, utils.ErrResourceExhausted):
		return fiber.StatusServiceUnavailable, "no page capacity available, retry later"
	default:
		return fiber.StatusBadGateway, "fetch failed: " + err.Error()
	}
}
