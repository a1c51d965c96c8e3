package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/antonk9218/skinflip/internal/pricing"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and returns a trade store.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStore{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

const tradeColumns = `asset_id, item_id, user_id, title, game, buy_price, min_sell_price,
	target_sell_price, current_price, offer_id, status, adjustments_count,
	created_at, listed_at, sold_at, updated_at`

// SavePurchase upserts a trade row keyed by asset_id in a single atomic
// statement. The min sell price is computed here, at creation, from the buy
// price and the configured margin and fee.
func (s *PostgresStore) SavePurchase(ctx context.Context, p PurchaseParams) (*PendingTrade, error) {
	if p.AssetID == "" {
		return nil, fmt.Errorf("save purchase: asset id is empty")
	}
	if p.BuyPrice <= 0 {
		return nil, fmt.Errorf("save purchase: buy price must be positive, got %f", p.BuyPrice)
	}

	minSell := pricing.MinSellPrice(p.BuyPrice, p.MinMarginPercent, p.FeePercent)

	var targetSell sql.NullFloat64
	if p.TargetSellPrice > 0 {
		target := p.TargetSellPrice
		if target < minSell {
			target = minSell
		}
		targetSell = sql.NullFloat64{Float64: target, Valid: true}
	}

	query := `
		INSERT INTO pending_trades (
			asset_id, item_id, user_id, title, game, buy_price, min_sell_price,
			target_sell_price, current_price, status, adjustments_count,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, NOW(), NOW()
		)
		ON CONFLICT (asset_id) DO UPDATE SET
			item_id = EXCLUDED.item_id,
			buy_price = EXCLUDED.buy_price,
			min_sell_price = EXCLUDED.min_sell_price,
			target_sell_price = EXCLUDED.target_sell_price,
			current_price = EXCLUDED.current_price,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	trade := &PendingTrade{
		AssetID:      p.AssetID,
		ItemID:       p.ItemID,
		UserID:       p.UserID,
		Title:        p.Title,
		Game:         p.Game,
		BuyPrice:     p.BuyPrice,
		MinSellPrice: minSell,
		Status:       StatusBought,
	}
	if targetSell.Valid {
		v := targetSell.Float64
		trade.TargetSellPrice = &v
	}
	buyPrice := p.BuyPrice
	trade.CurrentPrice = &buyPrice

	err := s.db.QueryRowContext(ctx, query,
		p.AssetID,
		p.ItemID,
		p.UserID,
		p.Title,
		p.Game,
		p.BuyPrice,
		minSell,
		targetSell,
		p.BuyPrice,
		string(StatusBought),
	).Scan(&trade.CreatedAt, &trade.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert purchase: %w", err)
	}

	TradesSavedTotal.Inc()

	s.logger.Info("purchase-recorded",
		zap.String("asset-id", p.AssetID),
		zap.String("title", p.Title),
		zap.Float64("buy-price", p.BuyPrice),
		zap.Float64("min-sell-price", minSell))

	return trade, nil
}

// UpdateStatus transitions a trade to the given status, stamping listed_at and
// sold_at where the lifecycle requires it.
func (s *PostgresStore) UpdateStatus(ctx context.Context, assetID string, status TradeStatus, upd StatusUpdate) error {
	if !status.Valid() {
		return fmt.Errorf("update status: invalid status %q", status)
	}

	query := `
		UPDATE pending_trades SET
			status = $2,
			offer_id = COALESCE($3, offer_id),
			current_price = COALESCE($4, current_price),
			listed_at = CASE WHEN $2 = 'listed' THEN NOW() ELSE listed_at END,
			sold_at = CASE WHEN $2 IN ('sold', 'stop_loss') THEN NOW() ELSE sold_at END,
			updated_at = NOW()
		WHERE asset_id = $1
	`

	var offerID sql.NullString
	if upd.OfferID != nil {
		offerID = sql.NullString{String: *upd.OfferID, Valid: true}
	}
	var currentPrice sql.NullFloat64
	if upd.CurrentPrice != nil {
		currentPrice = sql.NullFloat64{Float64: *upd.CurrentPrice, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query, assetID, string(status), offerID, currentPrice)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update status for asset %s: %w", assetID, ErrTradeNotFound)
	}

	StatusTransitionsTotal.WithLabelValues(string(status)).Inc()

	s.logger.Debug("trade-status-updated",
		zap.String("asset-id", assetID),
		zap.String("status", string(status)))

	return nil
}

// MarkAsSold transitions a trade to sold and records the realized profit
// against the final price when one is observed, otherwise against the target
// or minimum sell price.
func (s *PostgresStore) MarkAsSold(ctx context.Context, assetID string, finalPrice *float64) error {
	query := `
		UPDATE pending_trades SET
			status = 'sold',
			current_price = COALESCE($2, current_price),
			sold_at = NOW(),
			updated_at = NOW()
		WHERE asset_id = $1
		RETURNING buy_price, min_sell_price, target_sell_price
	`

	var price sql.NullFloat64
	if finalPrice != nil {
		price = sql.NullFloat64{Float64: *finalPrice, Valid: true}
	}

	var (
		buyPrice   float64
		minSell    float64
		targetSell sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, query, assetID, price).Scan(&buyPrice, &minSell, &targetSell)
	if err == sql.ErrNoRows {
		return fmt.Errorf("mark as sold for asset %s: %w", assetID, ErrTradeNotFound)
	}
	if err != nil {
		return fmt.Errorf("mark as sold: %w", err)
	}

	soldPrice := minSell
	if targetSell.Valid {
		soldPrice = targetSell.Float64
	}
	if finalPrice != nil {
		soldPrice = *finalPrice
	}
	realized := soldPrice - buyPrice

	StatusTransitionsTotal.WithLabelValues(string(StatusSold)).Inc()
	RealizedProfitUSD.Add(realized)

	s.logger.Info("trade-marked-sold",
		zap.String("asset-id", assetID),
		zap.Float64("buy-price", buyPrice),
		zap.Float64("sold-price", soldPrice),
		zap.Float64("realized-profit", realized))

	return nil
}

// GetPendingTrades returns trades matching the filter, excluding terminal
// states unless one is requested explicitly.
func (s *PostgresStore) GetPendingTrades(ctx context.Context, f TradeFilter) ([]*PendingTrade, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if f.Status != nil {
		args = append(args, string(*f.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	} else {
		conditions = append(conditions, "status NOT IN ('sold', 'cancelled', 'stop_loss')")
	}

	if f.Game != "" {
		args = append(args, f.Game)
		conditions = append(conditions, "game = $"+strconv.Itoa(len(args)))
	}

	query := "SELECT " + tradeColumns + " FROM pending_trades WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending trades: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var trades []*PendingTrade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending trade: %w", err)
		}
		trades = append(trades, trade)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate pending trades: %w", err)
	}

	return trades, nil
}

// Cleanup deletes terminal-status trades whose last update is older than the
// retention horizon.
func (s *PostgresStore) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("cleanup: retention days must be positive, got %d", retentionDays)
	}

	query := `
		DELETE FROM pending_trades
		WHERE status IN ('sold', 'cancelled', 'stop_loss')
		  AND updated_at < NOW() - ($1 * INTERVAL '1 day')
	`

	res, err := s.db.ExecContext(ctx, query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("cleanup trades: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	TradesCleanedTotal.Add(float64(deleted))

	s.logger.Info("trade-cleanup-complete",
		zap.Int64("deleted", deleted),
		zap.Int("retention-days", retentionDays))

	return deleted, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	s.logger.Info("closing-postgres-store")
	return s.db.Close()
}

func scanTrade(rows *sql.Rows) (*PendingTrade, error) {
	var (
		trade        PendingTrade
		targetSell   sql.NullFloat64
		currentPrice sql.NullFloat64
		offerID      sql.NullString
		status       string
		listedAt     sql.NullTime
		soldAt       sql.NullTime
	)

	err := rows.Scan(
		&trade.AssetID,
		&trade.ItemID,
		&trade.UserID,
		&trade.Title,
		&trade.Game,
		&trade.BuyPrice,
		&trade.MinSellPrice,
		&targetSell,
		&currentPrice,
		&offerID,
		&status,
		&trade.AdjustmentsCount,
		&trade.CreatedAt,
		&listedAt,
		&soldAt,
		&trade.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	trade.Status = TradeStatus(status)
	if targetSell.Valid {
		trade.TargetSellPrice = &targetSell.Float64
	}
	if currentPrice.Valid {
		trade.CurrentPrice = &currentPrice.Float64
	}
	if offerID.Valid {
		trade.OfferID = &offerID.String
	}
	if listedAt.Valid {
		trade.ListedAt = &listedAt.Time
	}
	if soldAt.Valid {
		trade.SoldAt = &soldAt.Time
	}

	return &trade, nil
}
