package controller

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github/itish2003/portfolio-rag/models"
	"github/itish2003/portfolio-rag/services"
)

// RAGController handles the HTTP requests for the question-answering API. It
// depends on the RAGService to perform the actual business logic.
type RAGController struct {
	ragService        services.RAGService
	maxQuestionLength int
	logger            *zap.Logger
}

// NewRAGController is a constructor function that creates a new RAGController.
func NewRAGController(service services.RAGService, maxQuestionLength int, logger *zap.Logger) *RAGController {
	return &RAGController{
		ragService:        service,
		maxQuestionLength: maxQuestionLength,
		logger:            logger,
	}
}

// RegisterRoutes mounts the API under /api.
func (c *RAGController) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	{
		api.POST("/ask", c.Ask)
		api.GET("/health", c.Health)
		api.GET("/stats", c.Stats)
	}
}

// Ask is the Gin handler for the POST /api/ask endpoint.
func (c *RAGController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Question must not be empty"})
		return
	}
	if c.maxQuestionLength > 0 && utf8.RuneCountInString(question) > c.maxQuestionLength {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Question is too long"})
		return
	}

	// The service always returns an answer; a non-nil error means the answer
	// describes a failure, which the client still gets to see.
	response, err := c.ragService.Ask(ctx.Request.Context(), question, strings.TrimSpace(req.SessionID))
	if err != nil {
		c.logger.Warn("controller: question answered with error", zap.Error(err))
	}
	if response == nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// Stats is the Gin handler for the GET /api/stats endpoint.
func (c *RAGController) Stats(ctx *gin.Context) {
	stats, err := c.ragService.Stats(ctx.Request.Context())
	if err != nil {
		c.logger.Error("controller: stats failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// Health is the Gin handler for the GET /api/health endpoint.
func (c *RAGController) Health(ctx *gin.Context) {
	stats, err := c.ragService.Stats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.HealthResponse{Status: "unhealthy", Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, models.HealthResponse{Status: "healthy", Stats: stats})
}

// CORS allows browser clients on other origins to call the API.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
