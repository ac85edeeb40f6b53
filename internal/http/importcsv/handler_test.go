package importcsv_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	"github.com/MrJamesThe3rd/fynance/internal/http/importcsv"
	"github.com/MrJamesThe3rd/fynance/internal/importer"
	"github.com/MrJamesThe3rd/fynance/internal/importer/household"
	"github.com/MrJamesThe3rd/fynance/internal/matching"
	"github.com/MrJamesThe3rd/fynance/internal/memory"
	"github.com/MrJamesThe3rd/fynance/internal/notify"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

var wib = time.FixedZone("WIB", 7*60*60)

const statement = `Tanggal;Jenis;Kategori;Jumlah;Keterangan
14/10/2024;Pengeluaran;Makanan;50.000;Nasi padang
15/10/2024;Pengeluaran;Transportasi;20.000;Gojek
`

func newRouter(store *memory.Store) http.Handler {
	parsers := map[importer.Format]importer.Parser{
		importer.FormatHousehold: household.NewParser(wib),
	}
	h := importcsv.NewHandler(
		importer.NewService(parsers, store, matching.NewService(store)),
		transaction.NewService(store, notify.Nop{}),
	)

	r := chi.NewRouter()
	r.Use(auth.Fixed(auth.Identity{FamilyID: "fam-1", Member: "budi@example.com"}))
	r.Route("/import", h.Routes)

	return r
}

func upload(t *testing.T, h http.Handler, format, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	if format != "" {
		require.NoError(t, mw.WriteField("format", format))
	}

	if content != "" {
		fw, err := mw.CreateFormFile("file", "statement.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

type successBody struct {
	Imported     int `json:"imported"`
	Transactions []struct {
		AddedBy string `json:"added_by"`
	} `json:"transactions"`
}

func TestHandler_Import(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: time.Date(2024, 10, 16, 9, 0, 0, 0, wib)})
	router := newRouter(store)

	rec := upload(t, router, "", statement)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Imported)
	assert.Equal(t, "budi@example.com", got.Transactions[0].AddedBy)
}

func TestHandler_Import_ConflictThenConfirm(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: time.Date(2024, 10, 16, 9, 0, 0, 0, wib)})
	router := newRouter(store)

	require.Equal(t, http.StatusCreated, upload(t, router, "household", statement).Code)

	again := statement + "16/10/2024;Pengeluaran;Makanan;35.000;Bakso\n"

	rec := upload(t, router, "household", again)
	require.Equal(t, http.StatusConflict, rec.Code)

	var conflict struct {
		New       []json.RawMessage `json:"new"`
		Conflicts []struct {
			Incoming struct {
				Description string `json:"description"`
			} `json:"incoming"`
			Existing struct {
				Description string `json:"description"`
			} `json:"existing"`
		} `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	require.Len(t, conflict.New, 1)
	require.Len(t, conflict.Conflicts, 2)
	assert.Equal(t, "Nasi padang", conflict.Conflicts[0].Existing.Description)

	confirm := `{"params":[` + string(conflict.New[0]) + `]}`

	req := httptest.NewRequest(http.MethodPost, "/import/confirm", strings.NewReader(confirm))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got successBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Imported)

	all, err := store.ListTransactions(req.Context(), transaction.ListFilter{FamilyID: "fam-1"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHandler_Import_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		content string
	}{
		{name: "MissingFile", format: "household"},
		{name: "UnknownFormat", format: "ofx", content: statement},
		{name: "Unrecognised", content: "foo;bar\n1;2\n"},
		{name: "InvalidRow", content: "Tanggal;Jenis;Jumlah\n14/10/2024;Pengeluaran;200.000.000.000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New(&clock.Mock{FixedNow: time.Now()})

			rec := upload(t, newRouter(store), tt.format, tt.content)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_Confirm_InvalidBody(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: time.Now()})

	req := httptest.NewRequest(http.MethodPost, "/import/confirm", strings.NewReader(`{"params":`))
	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
