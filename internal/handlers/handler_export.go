package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/middleware"
)

// exportHandler handles data portability: CSV export and the signed JSON
// backup round trip.
type exportHandler struct {
	exportService portssvc.ExportSvcFacade
}

func newExportHandler(es portssvc.ExportSvcFacade) *exportHandler {
	return &exportHandler{exportService: es}
}

func registerExportRoutes(rg *gin.RouterGroup, exportService portssvc.ExportSvcFacade) {
	h := newExportHandler(exportService)

	export := rg.Group("/export")
	{
		export.GET("/csv", h.exportCSV)
		export.GET("/backup", h.exportBackup)
	}
	rg.POST("/import/backup", h.importBackup)
}

// exportCSV godoc
// @Summary Download the full transaction ledger as CSV
// @Tags export
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Security BearerAuth
// @Router /export/csv [get]
func (h *exportHandler) exportCSV(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	csvBytes, err := h.exportService.ExportTransactionsCSV(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to export CSV")
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", csvBytes)
}

// exportBackup godoc
// @Summary Download a signed full-account backup
// @Description The file carries an HMAC signature keyed to the exporting user
// @Tags export
// @Produce json
// @Success 200 {object} dto.BackupFile
// @Security BearerAuth
// @Router /export/backup [get]
func (h *exportHandler) exportBackup(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	backup, err := h.exportService.ExportBackup(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to export backup")
		return
	}

	filename := fmt.Sprintf("backup-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, backup)
}

// importBackup godoc
// @Summary Import a backup file
// @Description Appends the backup's records under fresh IDs. Plan metadata is applied only when the signature verifies.
// @Tags export
// @Accept json
// @Produce json
// @Param backup body dto.BackupFile true "Backup file"
// @Success 200 {object} dto.ImportResult
// @Failure 400 {object} ErrorResponse "Invalid backup file"
// @Security BearerAuth
// @Router /import/backup [post]
func (h *exportHandler) importBackup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var backup dto.BackupFile
	if err := c.ShouldBindJSON(&backup); err != nil {
		logger.Warn("Failed to bind JSON for backup import", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid backup file: " + err.Error()})
		return
	}

	result, err := h.exportService.ImportBackup(c.Request.Context(), userID, backup)
	if err != nil {
		respondServiceError(c, err, "Failed to import backup")
		return
	}
	c.JSON(http.StatusOK, result)
}
