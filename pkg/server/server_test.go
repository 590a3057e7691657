package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/computation"
	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/de-tools/report-atlas/pkg/template"
)

const templateYAML = `
title: Accounts
computations:
  - {id: turnover, description: Turnover, concept: core:Turnover, kind: simple, values: {"2024": "1500", "2023": "1320"}}
  - {id: costs, description: Costs, concept: core:Costs, kind: simple, values: {"2024": "-400", "2023": "-380"}}
  - {id: profit, description: Profit, concept: core:Profit, kind: total, inputs: [turnover, costs]}
worksheets:
  - {id: pl, kind: simple, description: Profit and loss, computations: [profit]}
  - {id: summary, kind: multi-period, description: Summary, entries: [{computation: profit}]}
elements:
  - {kind: title}
  - {kind: worksheet, worksheet: pl}
`

func newRenderer(t *testing.T) *report.Renderer {
	t.Helper()
	tmpl, err := template.LoadTemplateFromString(templateYAML)
	require.NoError(t, err)
	static, err := computation.NewStaticValues(tmpl.Computations)
	require.NoError(t, err)
	registry, err := computation.NewRegistry(tmpl.Computations, static)
	require.NoError(t, err)
	r, err := report.NewRenderer(report.Options{
		Template: tmpl,
		Registry: registry,
		Periods: []domain.Period{
			domain.MustPeriod("2024", "2024-01-01", "2024-12-31"),
			domain.MustPeriod("2023", "2023-01-01", "2023-12-31"),
		},
		Context: &domain.Context{Entity: "01234567"},
	})
	require.NoError(t, err)
	return r
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Reports: newRenderer(t),
			Logger:  logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedType   string
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "ListWorksheets",
			path:           "/api/v1/worksheets",
			expectedStatus: http.StatusOK,
			expectedType:   "application/json",
			check: func(t *testing.T, body []byte) {
				var response []api.Worksheet
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, []api.Worksheet{
					{ID: "pl", Kind: "simple", Description: "Profit and loss"},
					{ID: "summary", Kind: "multi-period", Description: "Summary"},
				}, response)
			},
		},
		{
			name:           "ListPeriods",
			path:           "/api/v1/periods",
			expectedStatus: http.StatusOK,
			expectedType:   "application/json",
			check: func(t *testing.T, body []byte) {
				var response []api.Period
				require.NoError(t, json.Unmarshal(body, &response))
				require.Len(t, response, 2)
				assert.Equal(t, "2023", response[1].Name)
			},
		},
		{
			name:           "GetReport_Text",
			path:           "/api/v1/report?format=text",
			expectedStatus: http.StatusOK,
			expectedType:   "text/plain; charset=utf-8",
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "Accounts")
				assert.Contains(t, string(body), "Profit and loss")
				assert.Contains(t, string(body), "1100.00")
			},
		},
		{
			name:           "GetReport_HTML",
			path:           "/api/v1/report",
			expectedStatus: http.StatusOK,
			expectedType:   "text/html; charset=utf-8",
			check: func(t *testing.T, body []byte) {
				assert.True(t, strings.HasPrefix(string(body), "<html"))
				assert.Contains(t, string(body), `name="core:Profit"`)
			},
		},
		{
			name:           "GetWorksheet_Debug",
			path:           "/api/v1/worksheets/summary?format=debug",
			expectedStatus: http.StatusOK,
			expectedType:   "text/plain; charset=utf-8",
			check: func(t *testing.T, body []byte) {
				assert.True(t, strings.HasPrefix(string(body), `worksheet summary "Summary" periods=[2024 2023]`))
			},
		},
		{
			name:           "GetWorksheet_Unknown",
			path:           "/api/v1/worksheets/balance",
			expectedStatus: http.StatusNotFound,
			expectedType:   "application/json",
			check: func(t *testing.T, body []byte) {
				var response api.Error
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, `unknown worksheet: "balance"`, response.Error)
			},
		},
		{
			name:           "GetReport_UnknownFormat",
			path:           "/api/v1/report?format=pdf",
			expectedStatus: http.StatusBadRequest,
			expectedType:   "application/json",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")
			assert.Equal(t, tc.expectedType, resp.Header.Get("Content-Type"))

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			if tc.check != nil {
				tc.check(t, body)
			}
		})
	}
}

func TestNewWebAPI_DefaultShutdownTimeout(t *testing.T) {
	web := NewWebAPI(Config{Addr: "127.0.0.1:0", Dependencies: Dependencies{Reports: newRenderer(t)}})
	assert.Equal(t, defaultShutdownTimeout, web.timeout)
	assert.Equal(t, "127.0.0.1:0", web.server.Addr)
}
