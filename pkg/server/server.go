package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/internal/relayer"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

const requestCacheSize = 1024

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

type Server struct {
	echo     *echo.Echo
	runner   Runner
	history  History
	bus      *events.EventBus
	requests *lru.Cache[string, *RequestState]
	mu       sync.Mutex

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer wires the API. history may be nil when no stage store is configured.
func NewServer(runner Runner, bus *events.EventBus, history History, gatherer prometheus.Gatherer) (*Server, error) {
	requests, err := lru.New[string, *RequestState](requestCacheSize)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		echo:     echo.New(),
		runner:   runner,
		history:  history,
		bus:      bus,
		requests: requests,
		baseCtx:  ctx,
		cancel:   cancel,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = &requestValidator{validate: validator.New()}
	s.echo.Use(middleware.Recover())

	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/ws", s.handleWebSocket)
	if gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	api := s.echo.Group("/api/v1")
	api.POST("/transfers", s.handleCreateTransfer)
	api.GET("/requests/:id", s.handleGetRequest)
	api.GET("/transfers/:id/events", s.handleGetTransferEvents)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on address until Shutdown is called.
func (s *Server) Start(address string) error {
	log.Info().Str("address", address).Msg("[Server] [Start] starting api server")
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and cancels running pipelines.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.cancel()
	s.wg.Wait()
	return err
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateTransfer(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	mode, err := types.ParseMarkerKind(req.Mode)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	to, err := types.AddressFromBase58(req.To)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	input := types.TransferInput{
		To:        to,
		Symbol:    req.Symbol,
		Amount:    req.Amount,
		Memo:      req.Memo,
		FromAlias: req.From,
		ToAlias:   req.Dest,
	}

	now := time.Now().UTC()
	state := &RequestState{
		RequestID: uuid.New().String(),
		Mode:      mode.String(),
		Status:    RequestStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.requests.Add(state.RequestID, state)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result, err := s.runner.Run(s.baseCtx, mode, input)
		s.complete(state.RequestID, result, err)
	}()
	log.Info().Str("requestId", state.RequestID).Str("mode", state.Mode).
		Str("source", input.FromAlias).Str("destination", input.ToAlias).
		Msg("[Server] [handleCreateTransfer] transfer request accepted")
	return c.JSON(http.StatusAccepted, s.snapshot(state))
}

func (s *Server) complete(requestID string, result *relayer.Result, runErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.requests.Get(requestID)
	if !ok {
		return
	}
	state.UpdatedAt = time.Now().UTC()
	if result != nil {
		if result.Initiating != nil {
			state.TransferID = result.Initiating.TxIdHex()
		}
		state.Outcome = result.Outcome.String()
		state.Receipts = NewReceiptViews(result.Receipts)
	}
	if runErr != nil {
		state.Status = RequestStatusFailed
		state.Error = runErr.Error()
		return
	}
	state.Status = RequestStatusCompleted
}

func (s *Server) snapshot(state *RequestState) RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	copied.Receipts = append([]ReceiptView(nil), state.Receipts...)
	return copied
}

func (s *Server) handleGetRequest(c echo.Context) error {
	state, ok := s.requests.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody{Error: "request not found"})
	}
	return c.JSON(http.StatusOK, s.snapshot(state))
}

func (s *Server) handleGetTransferEvents(c echo.Context) error {
	if s.history == nil {
		return c.JSON(http.StatusNotImplemented, errorBody{Error: "no stage store configured"})
	}
	stored, err := s.history.FindStageEvents(c.Request().Context(), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Str("transferId", c.Param("id")).
			Msg("[Server] [handleGetTransferEvents] cannot load stage events")
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "cannot load stage events"})
	}
	if len(stored) == 0 {
		return c.JSON(http.StatusNotFound, errorBody{Error: "transfer not found"})
	}
	return c.JSON(http.StatusOK, stored)
}
