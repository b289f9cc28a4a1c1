package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goban/internal/domain/archive"
	errs "goban/internal/errors"
	"goban/internal/httpresponse"
	"goban/internal/utils"
)

type ArchiveUseCase interface {
	ListGames(ctx context.Context, pageNum int) (*archive.Page, error)
	GetGame(ctx context.Context, id string) (archive.Game, error)
	Import(ctx context.Context, path string) (*archive.ImportReport, error)
	RenderSheet(ctx context.Context, id string, w io.Writer) error
}

type ArchiveHandler struct {
	log       *zap.SugaredLogger
	archiveUC ArchiveUseCase
}

func NewArchiveHandler(log *zap.SugaredLogger, archiveUC ArchiveUseCase) *ArchiveHandler {
	return &ArchiveHandler{
		log:       log,
		archiveUC: archiveUC,
	}
}

func (ah *ArchiveHandler) Routes(r chi.Router) {
	r.Route("/archive", func(r chi.Router) {
		r.Get("/", ah.HandleList)
		r.Post("/import", ah.HandleImport)
		r.Get("/{id}", ah.HandleGet)
		r.Get("/{id}/sheet.pdf", ah.HandleSheet)
	})
}

type ImportRequest struct {
	Path string `json:"path"`
}

func (ah *ArchiveHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pageNum := 1
	if page := r.URL.Query().Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "page must be a positive number", nil)
			return
		}
		pageNum = n
	}

	page, err := ah.archiveUC.ListGames(r.Context(), pageNum)
	if err != nil {
		ah.log.Error(err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, page)
}

func (ah *ArchiveHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	g, err := ah.archiveUC.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ah.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, g)
}

func (ah *ArchiveHandler) HandleSheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var buf bytes.Buffer
	if err := ah.archiveUC.RenderSheet(r.Context(), id, &buf); err != nil {
		ah.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+id+`.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

func (ah *ArchiveHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	report, err := ah.archiveUC.Import(r.Context(), req.Path)
	if errors.Is(err, errs.ErrImportDisabled) || errors.Is(err, errs.ErrImportPathOutside) {
		ah.log.Warnf("import refused: %v", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusForbidden, err.Error(), nil)
		return
	}
	if err != nil {
		ah.log.Error(err)
		httpresponse.WriteErrorWithStatus(w, http.StatusUnprocessableEntity, err.Error(), report)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, report)
}

func (ah *ArchiveHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errs.ErrGameNotFound) {
		httpresponse.WriteErrorWithStatus(w, http.StatusNotFound, err.Error(), nil)
		return
	}
	ah.log.Error(err)
	httpresponse.WriteInternalErrorResponse(w)
}
