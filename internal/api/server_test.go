package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fjacquet/extracto-ofx/internal/config"
	"fjacquet/extracto-ofx/internal/container"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parser"
	"fjacquet/extracto-ofx/internal/parsererror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const santanderExport = "Santander\nCuenta: ES00\n\n\n\n\n\n" +
	"Fecha Operación;Fecha Valor;Concepto;Importe;Saldo\n" +
	"01/02/2024;01/02/2024;Transferencia recibida;1.200,00;2.000,00\n" +
	"02/02/2024;02/02/2024;Recibo luz;-45,30;1.954,70\n"

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.BodyLimitMB = 1
	c, err := container.NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)
	return NewServer(c)
}

func do(t *testing.T, s *Server, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	resp, body := do(t, setupTestServer(t), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var result map[string]string
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "ok", result["status"])
}

func TestProfilesEndpoint(t *testing.T) {
	resp, body := do(t, setupTestServer(t), httptest.NewRequest(http.MethodGet, "/api/profiles", nil))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var profiles []ProfileInfo
	require.NoError(t, json.Unmarshal(body, &profiles))
	require.Len(t, profiles, 3)

	byID := map[string]ProfileInfo{}
	for _, p := range profiles {
		byID[p.ID] = p
	}
	assert.Equal(t, 7, byID["santander"].HeaderSkip)
	assert.Equal(t, "heuristic", byID["inversis"].Strategy)
	assert.Equal(t, "tabular", byID["bbva"].Container)
}

func TestConvertEndpoint_RawBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/convert/santander", strings.NewReader(santanderExport))
	req.Header.Set(fiber.HeaderContentType, "text/csv")

	resp, body := do(t, setupTestServer(t), req)

	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, MIMEOFX, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "movimientos_santander.ofx")
	assert.Contains(t, string(body), "<FITID>20240201120000Trans</FITID>")
	assert.Contains(t, string(body), "<TRNAMT>-45.30</TRNAMT>")
}

func TestConvertEndpoint_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "santander.xls")
	require.NoError(t, err)
	_, err = fw.Write([]byte(santanderExport))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert/SANTANDER", &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())

	resp, body := do(t, setupTestServer(t), req)

	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "<CURDEF>EUR</CURDEF>")
}

func TestConvertEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
		status      int
		message     string
	}{
		{
			name:    "unknown source",
			path:    "/api/convert/caixa",
			body:    santanderExport,
			status:  fiber.StatusNotFound,
			message: "Unsupported bank",
		},
		{
			name:    "wrong file for source",
			path:    "/api/convert/bbva",
			body:    santanderExport,
			status:  fiber.StatusUnprocessableEntity,
			message: "do not match this bank",
		},
		{
			name:    "unreadable file",
			path:    "/api/convert/santander",
			body:    "\x00\x01\x02",
			status:  fiber.StatusUnsupportedMediaType,
			message: "could not be read",
		},
		{
			name:    "empty body",
			path:    "/api/convert/santander",
			status:  fiber.StatusBadRequest,
			message: "request body is empty",
		},
		{
			name:        "multipart without file",
			path:        "/api/convert/santander",
			contentType: "multipart/form-data; boundary=----test",
			body:        "------test--\r\n",
			status:      fiber.StatusBadRequest,
			message:     "'file' field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set(fiber.HeaderContentType, tt.contentType)
			}

			resp, body := do(t, setupTestServer(t), req)

			assert.Equal(t, tt.status, resp.StatusCode)
			var er ErrorResponse
			require.NoError(t, json.Unmarshal(body, &er), string(body))
			assert.Contains(t, er.Error, tt.message)
		})
	}
}

func TestPreviewEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/preview/santander?rows=1", strings.NewReader(santanderExport))

	resp, body := do(t, setupTestServer(t), req)

	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	var pv parser.Preview
	require.NoError(t, json.Unmarshal(body, &pv))
	assert.Equal(t, "santander", pv.Source)
	assert.Equal(t, "delimited", pv.Format)
	assert.Equal(t, 2, pv.TotalRows)
	assert.Equal(t, "Fecha Valor", pv.Mapping.Date)
	require.Len(t, pv.Rows, 1)
	assert.Equal(t, "1.200,00", pv.Rows[0].Amount)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&parsererror.UnknownSourceError{Source: "x"}, fiber.StatusNotFound},
		{&parsererror.ColumnNotFoundError{Source: "bbva", Label: "Fecha"}, fiber.StatusUnprocessableEntity},
		{&parsererror.ContainerFormatError{Source: "bbva"}, fiber.StatusUnsupportedMediaType},
		{fmt.Errorf("run: %w", context.Canceled), fiber.StatusRequestTimeout},
		{fiber.NewError(fiber.StatusBadRequest, "bad"), fiber.StatusBadRequest},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
