// Package server is the HTTP boundary of the palletizer.
package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autoPallet/errs"
	"autoPallet/models"
	"autoPallet/service"
	"autoPallet/utils"
)

type Server struct {
	runner *service.Runner
	logger *log.Logger
}

func New(runner *service.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.POST("/palletize", s.handlePalletize)
	r.POST("/batch", s.handleBatch)
	r.GET("/runs", s.handleListRuns)
	r.GET("/runs/:id", s.handleGetRun)
	r.GET("/runs/:id/sheet", s.handleSheet)
	r.GET("/report/:id", s.handleReport)
	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("server running", "addr", addr)
	return s.Router().Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ========== 排布接口 ==========

func (s *Server) handlePalletize(c *gin.Context) {
	var req models.PalletizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errs.Invalid("body", "%v", err))
		return
	}

	out, err := s.runner.Run(c.Request.Context(), c.Query("sku"), req)
	if err != nil {
		s.logger.Error("palletize failed", "err", err)
		writeError(c, err)
		return
	}
	if out.RunID != "" {
		c.Header("X-Run-ID", out.RunID)
	}
	c.JSON(http.StatusOK, out.Response)
}

func (s *Server) handleBatch(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, errs.Wrap(errs.CodeInvalidInput, err, "missing upload field \"file\""))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, errs.Wrap(errs.CodeInvalidInput, err, "open upload"))
		return
	}
	defer f.Close()

	jobs, rowErrs, err := utils.ReadJobsFrom(f)
	if err != nil {
		writeError(c, errs.Invalid("file", "%v", err))
		return
	}
	results := s.runner.RunBatch(c.Request.Context(), jobs, rowErrs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ========== 历史记录 ==========

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(c, errs.Invalid("limit", "must be a positive integer, got %q", v))
			return
		}
		limit = n
	}
	runs, err := s.runner.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	run, err := s.runner.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleReport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.runner.Report(c.Request.Context(), c.Param("id"), &buf); err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleSheet(c *gin.Context) {
	// Run ids are UUIDs; anything else never reaches the header.
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, errs.New(errs.CodeNotFound, "run %q not found", c.Param("id")))
		return
	}
	var buf bytes.Buffer
	if err := s.runner.Sheet(c.Request.Context(), id.String(), &buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+id.String()+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func writeError(c *gin.Context, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.CodeInternal
	}
	c.JSON(statusFor(code), gin.H{"error": code, "message": errs.UserMessage(err)})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.CodeInvalidInput:
		return http.StatusBadRequest
	case errs.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
