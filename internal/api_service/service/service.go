package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/langowen/cotizaya/deploy/config"
	"github.com/langowen/cotizaya/internal/entities"
	"github.com/langowen/cotizaya/internal/numeric"
	"github.com/pkg/errors"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	briefTTL = 48 * time.Hour
)

var validate = validator.New()

type Service struct {
	storage Storage
	redis   RedisStorage
	cfg     *config.Config
	now     func() time.Time
}

func NewService(storage Storage, redis RedisStorage, cfg *config.Config) (*Service, error) {
	if storage == nil || redis == nil {
		return nil, errors.New("service.NewService: storage and redis are required")
	}

	return &Service{
		storage: storage,
		redis:   redis,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

type historyRequest struct {
	Currency string `validate:"required"`
	Date     string `validate:"omitempty,datetime=2006-01-02"`
	Option   string `validate:"omitempty,oneof=last max min avg"`
}

type convertRequest struct {
	Amount    string `validate:"required"`
	Currency  string `validate:"required"`
	Direction string `validate:"omitempty,oneof=ars-to to-ars"`
}

type themeRequest struct {
	Theme string `validate:"required,oneof=light dark"`
}

// BalanceInput is a balance as entered by the user; every field accepts a
// number or a localized numeric string.
type BalanceInput struct {
	ARS  numeric.Flexible `json:"ars"`
	USD  numeric.Flexible `json:"usd"`
	USDT numeric.Flexible `json:"usdt"`
	BTC  numeric.Flexible `json:"btc"`
}

func (s *Service) FetchBoard(ctx context.Context) (*entities.Board, error) {
	return s.redis.GetBoard(ctx)
}

func (s *Service) FetchRate(ctx context.Context, currency string) (*entities.RateView, error) {
	const op = "service.FetchRate"

	c := entities.Currency(strings.ToLower(currency))
	if !c.Valid() {
		return nil, errors.Wrapf(entities.ErrUnknownCurrency, "%s: %s", op, currency)
	}

	board, err := s.redis.GetBoard(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	view := &entities.RateView{Currency: c, UpdatedAt: board.UpdatedAt}

	if c.IsCross() {
		row, ok := board.CrossRow(c)
		if !ok {
			return nil, errors.Wrapf(entities.ErrNotFound, "%s: %s", op, c)
		}
		view.Cross = &row
		return view, nil
	}

	row, ok := board.Row(c)
	if !ok {
		return nil, errors.Wrapf(entities.ErrNotFound, "%s: %s", op, c)
	}
	view.Quote = &row

	return view, nil
}

// History reads one stored quote for the day: the last one by default, or the
// max, min or average of the sell side.
func (s *Service) History(ctx context.Context, currency string, date string, option string) (*entities.HistoryPoint, error) {
	const op = "service.History"

	req := historyRequest{Currency: strings.ToLower(currency), Date: date, Option: option}
	if err := validate.Struct(req); err != nil {
		return nil, errors.Wrapf(entities.ErrInvalidRequest, "%s: %v", op, err)
	}

	c := entities.Currency(req.Currency)
	if !c.Valid() {
		return nil, errors.Wrapf(entities.ErrUnknownCurrency, "%s: %s", op, currency)
	}

	day := s.now()
	if req.Date != "" {
		// Already validated.
		day, _ = time.Parse(time.DateOnly, req.Date)
	}

	return s.storage.History(ctx, c, day, ParseAggFunc(req.Option))
}

func (s *Service) RequestRefresh(ctx context.Context, requester string) error {
	const op = "service.RequestRefresh"

	if requester == "" {
		requester = "api"
	}

	if err := s.redis.PublishRefresh(ctx, requester); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// News returns at most limit headlines, the configured default when limit is
// not positive.
func (s *Service) News(ctx context.Context, limit int) ([]entities.NewsItem, error) {
	const op = "service.News"

	if limit <= 0 {
		limit = s.cfg.News.Limit
	}

	items, err := s.redis.GetNews(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

func (s *Service) Convert(ctx context.Context, amount, currency, direction string) (*entities.Conversion, error) {
	const op = "service.Convert"

	req := convertRequest{Amount: amount, Currency: strings.ToLower(currency), Direction: direction}
	if err := validate.Struct(req); err != nil {
		if strings.TrimSpace(amount) == "" {
			return nil, errors.Wrap(entities.ErrInvalidAmount, op)
		}
		return nil, errors.Wrapf(entities.ErrInvalidRequest, "%s: %v", op, err)
	}

	value, ok := numeric.Parse(req.Amount)
	if !ok || value <= 0 {
		return nil, errors.Wrapf(entities.ErrInvalidAmount, "%s: %q", op, amount)
	}

	board, err := s.redis.GetBoard(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrNoSnapshot) {
			return nil, errors.Wrap(entities.ErrRateUnavailable, op)
		}
		return nil, errors.Wrap(err, op)
	}

	conv, err := Convert(&board.Snapshot, value, req.Currency, req.Direction)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return conv, nil
}

func (s *Service) Balances(ctx context.Context) (entities.Balance, error) {
	return s.redis.GetBalances(ctx)
}

// SaveBalances stores the input with invalid fields as zero and negative
// fields clamped to zero.
func (s *Service) SaveBalances(ctx context.Context, input BalanceInput) (entities.Balance, error) {
	const op = "service.SaveBalances"

	balance := entities.Balance{
		ARS:  input.ARS.OrZero(),
		USD:  input.USD.OrZero(),
		USDT: input.USDT.OrZero(),
		BTC:  input.BTC.OrZero(),
	}

	if err := validate.Struct(balance); err != nil {
		return entities.Balance{}, errors.Wrapf(entities.ErrInvalidRequest, "%s: %v", op, err)
	}

	if err := s.redis.SaveBalances(ctx, balance); err != nil {
		return entities.Balance{}, errors.Wrap(err, op)
	}

	return balance, nil
}

func (s *Service) ResetBalances(ctx context.Context) error {
	const op = "service.ResetBalances"

	if err := s.redis.DeleteBalances(ctx); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// BalanceTotal values the stored balance with the latest board. Without a
// board the totals only count the amounts that need no rate.
func (s *Service) BalanceTotal(ctx context.Context) (*entities.BalanceTotal, error) {
	const op = "service.BalanceTotal"

	balance, err := s.redis.GetBalances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	var snapshot *entities.RateSnapshot
	board, err := s.redis.GetBoard(ctx)
	switch {
	case err == nil:
		snapshot = &board.Snapshot
	case errors.Is(err, entities.ErrNoSnapshot):
	default:
		return nil, errors.Wrap(err, op)
	}

	total := Totals(balance, snapshot)

	return &total, nil
}

// Brief returns today's summary. The first summary built on a calendar day
// (UTC) is cached and served for the rest of it; the waiting message is not.
func (s *Service) Brief(ctx context.Context) (*entities.Brief, error) {
	const op = "service.Brief"

	now := s.now()
	date := now.UTC().Format(time.DateOnly)

	cached, err := s.redis.GetBrief(ctx, date)
	if err == nil && cached.Text != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		slog.Warn("failed to read cached brief", "op", op, "error", err)
	}

	var snapshot *entities.RateSnapshot
	board, err := s.redis.GetBoard(ctx)
	switch {
	case err == nil:
		snapshot = &board.Snapshot
	case errors.Is(err, entities.ErrNoSnapshot):
	default:
		return nil, errors.Wrap(err, op)
	}

	brief, ready := BuildBrief(snapshot, now)
	if !ready {
		return &brief, nil
	}

	if err := s.redis.SaveBrief(ctx, date, &brief, briefTTL); err != nil {
		slog.Warn("failed to cache brief", "op", op, "error", err)
	}

	return &brief, nil
}

// Theme returns the stored theme, light when none was chosen.
func (s *Service) Theme(ctx context.Context) (string, error) {
	const op = "service.Theme"

	theme, err := s.redis.GetTheme(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return ThemeLight, nil
		}
		return "", errors.Wrap(err, op)
	}

	if theme != ThemeDark {
		return ThemeLight, nil
	}

	return theme, nil
}

func (s *Service) SetTheme(ctx context.Context, theme string) error {
	const op = "service.SetTheme"

	req := themeRequest{Theme: strings.ToLower(strings.TrimSpace(theme))}
	if err := validate.Struct(req); err != nil {
		return errors.Wrapf(entities.ErrInvalidRequest, "%s: %v", op, err)
	}

	if err := s.redis.SaveTheme(ctx, req.Theme); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

type AggFunc int

const (
	Last AggFunc = iota
	Avg
	Min
	Max
)

func (a AggFunc) String() string {
	return [...]string{"last", "avg", "min", "max"}[a]
}

// ParseAggFunc maps a query option to its aggregation; unknown means last.
func ParseAggFunc(option string) AggFunc {
	switch option {
	case "avg":
		return Avg
	case "min":
		return Min
	case "max":
		return Max
	default:
		return Last
	}
}
