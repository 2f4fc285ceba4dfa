package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func exportRouter(ds *stubDataset, t *testing.T) chi.Router {
	h := NewExportHandler(ds, testLog(t))
	r := chi.NewRouter()
	r.Get("/api/v1/export", h.Export)
	return r
}

func TestExport_DefaultsToJSON(t *testing.T) {
	r := exportRouter(&stubDataset{collection: testCollection(t)}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/export")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	disposition := rec.Header().Get("Content-Disposition")
	require.Contains(t, disposition, "attachment")
	require.Contains(t, disposition, "copafer-all-conversations-")
	require.True(t, strings.HasSuffix(disposition, `.json"`))

	require.Contains(t, rec.Body.String(), `"totalConversations": 2`)
}

func TestExport_SingleSessionCSV(t *testing.T) {
	r := exportRouter(&stubDataset{collection: testCollection(t)}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/export?format=csv&session=5511960620053")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "copafer-conversation-5511960620053-")

	body := rec.Body.Bytes()
	require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, body[:3], "CSV starts with a UTF-8 BOM")
	require.Contains(t, string(body), "Date/Time,Sender,Type,Content,SessionID,FormattedPhone")
	require.NotContains(t, string(body), "5511987654321", "other sessions excluded")
}

func TestExport_UnknownFormat(t *testing.T) {
	r := exportRouter(&stubDataset{collection: testCollection(t)}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/export?format=xml")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_SessionNotFound(t *testing.T) {
	r := exportRouter(&stubDataset{collection: testCollection(t)}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/export?format=txt&session=404404")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport_FiltersApply(t *testing.T) {
	r := exportRouter(&stubDataset{collection: testCollection(t)}, t)

	rec := doRequest(t, r, http.MethodGet, "/api/v1/export?format=txt&search=tinta")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "5511987654321")
	require.NotContains(t, body, "5511960620053")
}
