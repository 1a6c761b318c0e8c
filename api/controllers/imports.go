package controllers

import (
	"net/http"

	"github.com/mariasandoval/storelocator-backend/api/responses"
	"github.com/mariasandoval/storelocator-backend/internal/importer"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
)

// 32 MiB in-memory ceiling for the multipart parser; larger uploads
// spill to temp files.
const importMemoryLimit = 32 << 20

// StoreImport accepts a multipart CSV upload and reconciles it against
// the store table, returning a per-row report.
func StoreImport(svc importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(importMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "csv file is required"))
			return
		}
		defer file.Close()

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"filename":   header.Filename,
				"size_bytes": header.Size,
			})
			logg.Info(ctx, "import.upload.received")
		}

		report, err := svc.ImportCSV(ctx, file)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
