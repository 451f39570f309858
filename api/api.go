// Package api serves a read-only HTTP view of the running bot: its status,
// its trade log and a CSV export of the log.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/signalbot/journal"
	"github.com/rustyeddy/signalbot/ledger"
	"github.com/rustyeddy/signalbot/scheduler"
)

// StatusSource publishes the latest scheduler state.
type StatusSource interface {
	Status() scheduler.Status
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TradesResponse struct {
	Symbol      string         `json:"symbol"`
	Count       int            `json:"count"`
	RealizedPnL string         `json:"realized_pnl"`
	Trades      []ledger.Trade `json:"trades"`
}

type Options struct {
	CORSOrigins []string
	Logger      *slog.Logger
}

type handler struct {
	src StatusSource
	log *slog.Logger
}

// NewRouter builds the gin engine for src.
func NewRouter(src StatusSource, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &handler{src: src, log: log}

	router := gin.New()
	router.Use(CORS(opts.CORSOrigins))
	router.Use(Logger(log))
	router.Use(ErrorHandler(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", h.status)
		v1.GET("/trades", h.trades)
		v1.GET("/trades.csv", h.tradesCSV)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	})
	return router
}

// status handles GET /api/v1/status
func (h *handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.src.Status())
}

// trades handles GET /api/v1/trades
func (h *handler) trades(c *gin.Context) {
	st := h.src.Status()
	trades := st.Trades
	if trades == nil {
		trades = []ledger.Trade{}
	}
	c.JSON(http.StatusOK, TradesResponse{
		Symbol:      st.Symbol,
		Count:       len(trades),
		RealizedPnL: ledger.SumRealized(trades).String(),
		Trades:      trades,
	})
}

// tradesCSV handles GET /api/v1/trades.csv
func (h *handler) tradesCSV(c *gin.Context) {
	st := h.src.Status()

	var buf bytes.Buffer
	if err := journal.WriteTradeLog(&buf, st.Trades); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Code:    "EXPORT_ERROR",
				Message: fmt.Sprintf("Failed to export trades: %v", err),
			},
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, TradeLogFilename(st.Symbol)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// TradeLogFilename is the download name of the CSV export.
func TradeLogFilename(symbol string) string {
	return fmt.Sprintf("trade_log_%s.csv", strings.ToUpper(symbol))
}

// Serve runs h on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
