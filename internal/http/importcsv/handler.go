package importcsv

import (
	"cmp"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/importer"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	CategoryID  uuid.UUID        `json:"category_id"`
	Amount      int64            `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	AddedBy     string           `json:"added_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	CategoryID  uuid.UUID        `json:"category_id"`
	Amount      int64            `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	AddedBy     string           `json:"added_by"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

// importCSV inserts the uploaded rows, or answers 409 with the rows that look
// like existing transactions so the client can confirm a subset.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatHousehold
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	familyID := auth.FamilyID(r.Context())

	params, err := h.importSvc.Import(r.Context(), familyID, format, file, auth.AddedBy(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), familyID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		writeJSON(w, http.StatusConflict, resp)

		return
	}

	writeJSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	addedBy := auth.AddedBy(r.Context())

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, transaction.CreateParams{
			CategoryID:  p.CategoryID,
			Amount:      p.Amount,
			Type:        p.Type,
			Description: p.Description,
			Date:        p.Date,
			AddedBy:     cmp.Or(p.AddedBy, addedBy),
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), auth.FamilyID(r.Context()), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSuccessResponse(txs))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, importer.ErrInvalidFile),
		errors.Is(err, transaction.ErrMalformed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("import failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		CategoryID:  tx.CategoryID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Description: tx.Description,
		Date:        tx.Date,
		AddedBy:     tx.AddedBy,
		CreatedAt:   tx.CreatedAt,
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		CategoryID:  p.CategoryID,
		Amount:      p.Amount,
		Type:        p.Type,
		Description: p.Description,
		Date:        p.Date,
		AddedBy:     p.AddedBy,
	}
}
