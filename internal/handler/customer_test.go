package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/If4x/ShopCalc-Pro/internal/codec"
	"github.com/If4x/ShopCalc-Pro/internal/register"
	"github.com/If4x/ShopCalc-Pro/internal/storage"
)

type cartViewBody struct {
	Products []struct {
		Slot       int    `json:"slot"`
		Name       string `json:"name"`
		Price      string `json:"price"`
		HasDeposit bool   `json:"hasDeposit"`
		Quantity   int    `json:"quantity"`
	} `json:"products"`
	Total   string `json:"total"`
	Deposit string `json:"deposit"`
}

func newCustomerServer(t *testing.T) (*httptest.Server, *register.Register, string, *int) {
	t.Helper()
	dir := t.TempDir()
	gw := storage.NewGateway(dir, codec.Codec{}, zap.NewNop())
	require.NoError(t, gw.Init())
	reg := register.Load(gw, zap.NewNop())

	restarts := 0
	srv := httptest.NewServer(NewCustomer(reg, func() { restarts++ }).Routes())
	t.Cleanup(srv.Close)
	return srv, reg, dir, &restarts
}

func getCartView(t *testing.T, srv *httptest.Server) cartViewBody {
	t.Helper()
	resp, err := http.Get(srv.URL + "/content")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body cartViewBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func mustGet(t *testing.T, url string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContent_InitialView(t *testing.T) {
	srv, _, _, _ := newCustomerServer(t)

	body := getCartView(t, srv)
	require.Len(t, body.Products, 9)
	assert.Equal(t, "Brezel", body.Products[0].Name)
	assert.Equal(t, "2.50", body.Products[0].Price)
	assert.False(t, body.Products[0].HasDeposit)
	assert.Equal(t, "0.00", body.Total)
	assert.Equal(t, "0.00", body.Deposit)
}

func TestAdd_DepositIncludedInTotal(t *testing.T) {
	srv, _, _, _ := newCustomerServer(t)

	// Slot 2 is Cola: 2.50 with deposit.
	mustGet(t, srv.URL+"/add?id=2&quantity=2")

	body := getCartView(t, srv)
	assert.Equal(t, 2, body.Products[2].Quantity)
	assert.Equal(t, "7.00", body.Total)
	assert.Equal(t, "2.00", body.Deposit)
}

func TestAdd_BadSlotIsSilentlyTolerated(t *testing.T) {
	srv, _, _, _ := newCustomerServer(t)

	mustGet(t, srv.URL+"/add?id=99")
	mustGet(t, srv.URL+"/add?id=abc")
	mustGet(t, srv.URL+"/add")

	assert.Equal(t, "0.00", getCartView(t, srv).Total)
}

func TestRemove_NeverGoesNegative(t *testing.T) {
	srv, _, _, _ := newCustomerServer(t)

	mustGet(t, srv.URL+"/remove?id=0")
	assert.Equal(t, 0, getCartView(t, srv).Products[0].Quantity)

	mustGet(t, srv.URL+"/add?id=0&quantity=2")
	mustGet(t, srv.URL+"/remove?id=0")
	assert.Equal(t, 1, getCartView(t, srv).Products[0].Quantity)
}

func TestClear(t *testing.T) {
	srv, _, _, _ := newCustomerServer(t)

	mustGet(t, srv.URL+"/add?id=0&quantity=3")
	mustGet(t, srv.URL+"/clear")
	assert.Equal(t, "0.00", getCartView(t, srv).Total)
}

func TestSubmit_CommitsToLedger(t *testing.T) {
	srv, _, dir, _ := newCustomerServer(t)

	mustGet(t, srv.URL+"/add?id=0&quantity=2")
	mustGet(t, srv.URL+"/submit")

	// Cart cleared, sale recorded.
	assert.Equal(t, "0.00", getCartView(t, srv).Total)

	resp, err := http.Get(srv.URL + "/sales")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var report struct {
		Sales []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"sales"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Len(t, report.Sales, 9)
	assert.Equal(t, 2, report.Sales[0].Count)

	// Durable before the response: the ledger file holds the sale.
	data, err := os.ReadFile(filepath.Join(dir, "sales.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Brezel,2\n"))

	// A second submit commits all-zero quantities.
	mustGet(t, srv.URL+"/submit")
	data, err = os.ReadFile(filepath.Join(dir, "sales.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Brezel,2\n"))
}

func TestExportSales(t *testing.T) {
	srv, _, _, _ := newCustomerServer(t)

	mustGet(t, srv.URL+"/add?id=1")
	mustGet(t, srv.URL+"/submit")

	resp, err := http.Post(srv.URL+"/exportSales", "", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "attachment; filename=sales.csv", resp.Header.Get("Content-Disposition"))
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	var sb bytes.Buffer
	_, err = sb.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	assert.Equal(t, "Produkt,Anzahl", lines[0])
	assert.Equal(t, "Fanta,1", lines[2])
}

func TestResetSales_ZeroesPersistsAndRequestsRestart(t *testing.T) {
	srv, _, dir, restarts := newCustomerServer(t)

	mustGet(t, srv.URL+"/add?id=0&quantity=5")
	mustGet(t, srv.URL+"/submit")

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Post(srv.URL+"/resetSales", "", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sales", resp.Header.Get("Location"))
	assert.Equal(t, 1, *restarts)

	data, err := os.ReadFile(filepath.Join(dir, "sales.csv"))
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		assert.True(t, strings.HasSuffix(line, ",0"), "line %q", line)
	}

	// The pre-reset counters were archived.
	matches, err := filepath.Glob(filepath.Join(dir, "archive", "sales-*.csv.gz"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
