package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mpdee-accounts/src/models"
	"mpdee-accounts/src/reconcile"
	"mpdee-accounts/src/util"
)

// multipart parts above this size spill to temporary files.
const maxMemoryUpload = 8 << 20

func ImportStatement(svc *reconcile.Service, log zerolog.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxMemoryUpload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				log.Info().Int64("limit", tooLarge.Limit).Msg("Rejected oversized statement upload")
				util.WriteError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			log.Info().Err(err).Msg("Failed to parse statement upload")
			util.WriteError(w, http.StatusBadRequest, "no file uploaded")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			util.WriteError(w, http.StatusBadRequest, "no file uploaded")
			return
		}
		defer file.Close()

		res, err := svc.Import(r.Context(), header.Filename, file)
		if err != nil {
			util.WriteServiceError(w, log, err, "import statement")
			return
		}
		util.WriteJSON(w, http.StatusCreated, res)
	}
}

func ListImports(svc *reconcile.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imports, err := svc.ListImports(r.Context())
		if err != nil {
			util.WriteServiceError(w, log, err, "list imports")
			return
		}
		util.WriteJSON(w, http.StatusOK, imports)
	}
}

func ListImportTransactions(svc *reconcile.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importID := chi.URLParam(r, "import_id")
		if !util.ValidateID(importID) {
			util.WriteError(w, http.StatusNotFound, "import not found")
			return
		}
		txns, err := svc.ListTransactions(r.Context(), importID)
		if err != nil {
			util.WriteServiceError(w, log, err, "list transactions")
			return
		}
		util.WriteJSON(w, http.StatusOK, txns)
	}
}

func IgnoreTransactions(svc *reconcile.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importID := chi.URLParam(r, "import_id")
		if !util.ValidateID(importID) {
			util.WriteError(w, http.StatusNotFound, "import not found")
			return
		}
		var req struct {
			TransactionIDs []string `json:"transaction_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Info().Err(err).Str("import_id", importID).Msg("Failed to decode ignore request body")
			util.WriteError(w, http.StatusBadRequest, "invalid request")
			return
		}

		n, err := svc.Ignore(r.Context(), importID, req.TransactionIDs)
		if err != nil {
			util.WriteServiceError(w, log, err, "ignore transactions")
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]int{"ignored": n})
	}
}

func CommitTransactions(svc *reconcile.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importID := chi.URLParam(r, "import_id")
		if !util.ValidateID(importID) {
			util.WriteError(w, http.StatusNotFound, "import not found")
			return
		}
		var req struct {
			Selections []models.CommitSelection `json:"selections"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Info().Err(err).Str("import_id", importID).Msg("Failed to decode commit request body")
			util.WriteError(w, http.StatusBadRequest, "invalid request")
			return
		}

		res, err := svc.Commit(r.Context(), importID, req.Selections)
		if err != nil {
			util.WriteServiceError(w, log, err, "commit transactions")
			return
		}
		util.WriteJSON(w, http.StatusOK, res)
	}
}
