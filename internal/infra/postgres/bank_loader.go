package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"adaptive-quiz-service/internal/domain"
)

// BankLoader loads question-bank JSONB from Postgres. Banks are validated on
// the way out so malformed content (zero or multiple correct options, bad
// difficulty) is rejected at ingestion instead of leaking into scoring.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if err != nil {
		return domain.Bank{}, fmt.Errorf("load bank: %w", err)
	}
	var bank domain.Bank
	if err := json.Unmarshal(raw, &bank); err != nil {
		return domain.Bank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return domain.Bank{}, fmt.Errorf("validate bank %s: %w", bankID, err)
	}
	return bank, nil
}
