// Package upload реализует HTTP-обработчик загрузки бизнес-документа.
//
// Запрос приходит как multipart/form-data: файл, тип документа и
// необязательные привязка к товару и срок действия.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/marketplace-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/marketplace-backend/internal/http/response"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/document"
)

// maxDocumentSize ограничивает размер загружаемого документа.
const maxDocumentSize = 20 << 20

// Handler обрабатывает HTTP-запросы загрузки документов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс загрузки документа.
type Service interface {
	Upload(ctx context.Context, ownerUID, docType string,
		file io.Reader, filename string, productID *int, expiresAt *time.Time) (*models.BusinessDocument, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Загрузка бизнес-документа
// @Description Загружает документ магазина на проверку. Документ создается в статусе pending.
// @Tags Documents
// @Accept  multipart/form-data
// @Produce  json
// @Param file formData file true "Файл документа"
// @Param type formData string true "Тип документа: business_license, tax_cert, registration"
// @Param product_id formData int false "Привязка к товару"
// @Param expires_at formData string false "Срок действия документа (RFC3339)"
// @Success 200 {object} response.Response "Документ загружен"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 422 {object} response.ErrorResponse "Неизвестный тип документа"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /business-documents/upload [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ownerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || ownerUID == "" {
		log.Error("user uid is missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("document file is missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("field file is a required field"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	docType := r.FormValue("type")

	var productID *int
	if raw := r.FormValue("product_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("invalid product_id", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("field product_id must be a number"))
			return
		}
		productID = &id
	}

	var expiresAt *time.Time
	if raw := r.FormValue("expires_at"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Error("invalid expires_at", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("field expires_at must be RFC3339"))
			return
		}
		expiresAt = &ts
	}

	doc, err := h.service.Upload(r.Context(), ownerUID, docType, file, header.Filename, productID, expiresAt)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDocumentType) {
			log.Error("unknown document type", slog.String("type", docType))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown document type"))
			return
		}
		log.Error("failed to upload document", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to upload document"))
		return
	}

	log.Info("document uploaded", slog.Int("id", doc.ID), slog.String("type", doc.Type))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     doc.ID,
		"type":   doc.Type,
		"status": doc.ApprovalStatus,
	}))
}
