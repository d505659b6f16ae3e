package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/contact/service"
	"github.com/devfolio/portfolio/backend/pkg/metrics"
)

// submitRequest mirrors the public contact form.
type submitRequest struct {
	Name    string `json:"nome"`
	Email   string `json:"email"`
	Company string `json:"empresa"`
	Message string `json:"mensagem"`
}

// RegisterPublicRoutes mounts POST /contato on rg. Handlers in before run
// ahead of the submission, typically the contact rate limiter.
func RegisterPublicRoutes(rg gin.IRoutes, svc service.Service, before ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, before...), func(c *gin.Context) {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			apierror.Write(c, apierror.Invalid("Dados inválidos"), "")
			return
		}
		ct, err := svc.Submit(c.Request.Context(), service.SubmitInput{
			Name:      req.Name,
			Email:     req.Email,
			Company:   req.Company,
			Message:   req.Message,
			SourceIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		if err != nil {
			apierror.Write(c, err, "Erro interno do servidor. Tente novamente mais tarde.")
			return
		}
		metrics.ContactsSubmitted.Inc()
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Mensagem enviada com sucesso! Retornarei o contato em breve.",
			"id":      ct.ID,
		})
	})
	rg.POST("/contato", handlers...)
}

// RegisterAdminRoutes mounts the contact management routes. rg must already
// be guarded by the auth middleware.
func RegisterAdminRoutes(rg gin.IRoutes, svc service.Service) {
	rg.GET("/contatos", func(c *gin.Context) {
		page, err := svc.List(c.Request.Context(), service.ListQuery{
			Status: c.Query("status"),
			Page:   queryInt(c, "page"),
			Limit:  queryInt(c, "limit"),
		})
		if err != nil {
			apierror.Write(c, err, "Erro ao buscar contatos")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"items":       page.Items,
			"total":       page.Total,
			"totalPages":  page.TotalPages,
			"currentPage": page.CurrentPage,
		})
	})

	rg.PATCH("/contatos/:id/status", func(c *gin.Context) {
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			apierror.Write(c, apierror.Invalid("Status inválido"), "")
			return
		}
		ct, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			apierror.Write(c, err, "Erro ao atualizar status")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status atualizado com sucesso", "contact": ct})
	})

	rg.DELETE("/contatos/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			apierror.Write(c, err, "Erro ao deletar contato")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contato deletado com sucesso"})
	})

	rg.GET("/stats", func(c *gin.Context) {
		st, err := svc.Stats(c.Request.Context())
		if err != nil {
			apierror.Write(c, err, "Erro ao buscar estatísticas")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "stats": st})
	})

	rg.GET("/export", func(c *gin.Context) {
		data, err := svc.ExportCSV(c.Request.Context())
		if err != nil {
			apierror.Write(c, err, "Erro ao exportar contatos")
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+svc.ExportFilename()+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	})
}

// queryInt returns the integer query value, or 0 when absent or not a number
// so the service falls back to its default.
func queryInt(c *gin.Context, key string) int64 {
	n, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
