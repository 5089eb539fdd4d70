package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	apperrors "energycli/internal/errors"
	"energycli/pkg/contracts/domain"
)

// EmberYearlyPath is the Ember endpoint for yearly generation by fuel.
const EmberYearlyPath = "/v1/electricity-generation/yearly"

// emberSeriesColumns maps Ember series names onto OWID column names so the
// OWID normalizer can read pivoted rows.
var emberSeriesColumns = map[string]string{
	"bioenergy":        "biofuel_electricity",
	"coal":             "coal_electricity",
	"gas":              "gas_electricity",
	"hydro":            "hydro_electricity",
	"nuclear":          "nuclear_electricity",
	// Ember has no oil series; oil is reported inside other fossil.
	"other fossil":     "oil_electricity",
	"other renewables": "other_renewable_electricity",
	"solar":            "solar_electricity",
	"wind":             "wind_electricity",
}

// EmberOptions configures an EmberSource.
type EmberOptions struct {
	BaseURL   string
	APIKey    string
	Entity    string
	StartYear int
}

// EmberSource reads yearly generation per fuel from the Ember API and pivots
// it into one OWID-shaped row per year.
type EmberSource struct {
	client *http.Client
	opts   EmberOptions
	logger *slog.Logger
}

// NewEmberSource creates an Ember API source.
func NewEmberSource(client *http.Client, opts EmberOptions, logger *slog.Logger) *EmberSource {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmberSource{
		client: client,
		opts:   opts,
		logger: logger.With(slog.String("component", "ember_source")),
	}
}

// Name implements RowSource.
func (s *EmberSource) Name() string { return "ember" }

type emberResponse struct {
	Data []emberPoint `json:"data"`
}

type emberPoint struct {
	EntityCode    string   `json:"entity_code"`
	Date          string   `json:"date"`
	Year          *int     `json:"year"`
	Series        string   `json:"series"`
	GenerationTWh *float64 `json:"generation_twh"`
}

func (p emberPoint) year() (int, bool) {
	if p.Year != nil {
		return *p.Year, true
	}
	date := strings.TrimSpace(p.Date)
	if len(date) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date[:4])
	return y, err == nil
}

// Stream implements RowSource. Rows are emitted oldest year first.
func (s *EmberSource) Stream(ctx context.Context, fn RowFunc) error {
	endpoint, err := s.endpoint()
	if err != nil {
		return apperrors.NewConfigError("invalid ember base url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewConfigError("build ember request", err)
	}
	req.Header.Set("X-API-Key", s.opts.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	s.logger.InfoContext(ctx, "fetching ember yearly generation",
		slog.String("entity", s.opts.Entity),
		slog.Int("start_year", s.opts.StartYear))

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("fetch ember data", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.ErrorContext(ctx, "ember request failed",
			slog.Int("status_code", resp.StatusCode))
		return apperrors.NewNetworkError(
			fmt.Sprintf("ember returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}

	var payload emberResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return apperrors.NewParsingError("decode ember response", err)
	}

	rows := s.pivot(ctx, payload.Data)
	s.logger.InfoContext(ctx, "ember data pivoted",
		slog.Int("points", len(payload.Data)),
		slog.Int("years", len(rows)))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *EmberSource) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimRight(s.opts.BaseURL, "/") + EmberYearlyPath)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("entity_code", s.opts.Entity)
	q.Set("is_aggregate_series", "false")
	if s.opts.StartYear > 0 {
		q.Set("start_date", strconv.Itoa(s.opts.StartYear))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// pivot folds per-series points into one row per year. The total is the
// explicit total series when Ember sends one, otherwise the sum of the
// series seen for that year.
func (s *EmberSource) pivot(ctx context.Context, points []emberPoint) []domain.RawRow {
	type yearAcc struct {
		values   map[string]float64
		sum      float64
		total    float64
		hasTotal bool
	}
	byYear := make(map[int]*yearAcc)

	for _, p := range points {
		if p.EntityCode != "" && s.opts.Entity != "" && p.EntityCode != s.opts.Entity {
			continue
		}
		year, ok := p.year()
		if !ok || p.GenerationTWh == nil {
			continue
		}
		acc, ok := byYear[year]
		if !ok {
			acc = &yearAcc{values: make(map[string]float64)}
			byYear[year] = acc
		}

		series := strings.ToLower(strings.TrimSpace(p.Series))
		if series == "total generation" || series == "total" {
			acc.total, acc.hasTotal = *p.GenerationTWh, true
			continue
		}
		column, known := emberSeriesColumns[series]
		if !known {
			s.logger.DebugContext(ctx, "unmapped ember series", slog.String("series", p.Series))
			acc.sum += *p.GenerationTWh
			continue
		}
		acc.values[column] += *p.GenerationTWh
		acc.sum += *p.GenerationTWh
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([]domain.RawRow, 0, len(years))
	for _, y := range years {
		acc := byYear[y]
		row := domain.RawRow{
			"year":     strconv.Itoa(y),
			"iso_code": s.opts.Entity,
		}
		for column, v := range acc.values {
			row[column] = formatFloat(v)
		}
		total := acc.sum
		if acc.hasTotal {
			total = acc.total
		}
		row["electricity_generation"] = formatFloat(total)
		rows = append(rows, row)
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
