package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicos/internal/aggregate"
	"servicos/internal/core"
)

func sample(now time.Time) []core.ServiceRecord {
	return []core.ServiceRecord{
		{ID: "1", Title: "100", ServiceType: "MONTAGEM", Price: core.Money{Cents: 500}, Username: "ana", CreatedAt: now, IncludeInTotal: true},
		{ID: "2", Title: "100", ServiceType: "PREPARO", Price: core.Money{Cents: 200}, Username: "bia", CreatedAt: now},
		{ID: "3", Title: "200", ServiceType: "MONTAGEM", Price: core.Money{Cents: 500}, Username: "ana", CreatedAt: now, IncludeInTotal: true},
	}
}

func TestRenderAdminReport(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err = r.Render(&buf, Data{
		Header:    Header{UserName: "boss", AllUsers: true, GeneratedAt: now, AutoPrint: true},
		Analytics: aggregate.Analyze(sample(now), aggregate.Period6Months, now, true),
	})
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{
		"Administrador",
		"Últimos 6 meses",
		"18/10/2026 12:00",
		"Outubro de 2026",
		"R$ 12,00",
		"R$ 10,00",
		"R$ 2,00",
		"R$ 4,00",
		"MONTAGEM",
		"66,7%",
		"Por usuário",
		"ana",
		"/static/print.js",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderUserReportHidesUsers(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err = r.Render(&buf, Data{
		Header:    Header{UserName: "ana <script>", GeneratedAt: now},
		Analytics: aggregate.Analyze(nil, aggregate.PeriodAll, now, false),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "Por usuário")
	assert.NotContains(t, out, "Administrador")
	assert.NotContains(t, out, "print.js")
	assert.Contains(t, out, "Todos os registros")
	assert.Contains(t, out, "Nenhum serviço no período.")
	assert.Contains(t, out, "ana &lt;script&gt;")
	assert.False(t, strings.Contains(out, "ana <script>"))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Março de 2026", MonthLabel("2026-03"))
	assert.Equal(t, "Janeiro de 1970", MonthLabel("1970-01"))
	assert.Equal(t, "garbage", MonthLabel("garbage"))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "33,3%", FormatPercent(100.0/3))
	assert.Equal(t, "0,0%", FormatPercent(0))
	assert.Equal(t, "100,0%", FormatPercent(100))
}
