package api

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/menulens/menulens/internal/auth"
	"github.com/menulens/menulens/internal/export"
)

func handleDownloadExport(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPORT_DISABLED", "result export is not enabled", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleAnalyst); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	key := r.PathValue("key")
	reader, info, err := deps.Exporter.Open(r.Context(), key)
	if errors.Is(err, export.ErrNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, "EXPORT_NOT_FOUND", "export not found", false, map[string]any{"key": key})
		return
	}
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "EXPORT_UNAVAILABLE", "export could not be opened", false, map[string]any{"key": key, "details": err.Error()})
		return
	}
	defer func() { _ = reader.Close() }()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}
