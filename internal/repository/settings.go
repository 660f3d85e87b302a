package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// settings は管理者パスワードハッシュなどのキー・バリュー設定を持つ

func (r *Repository) GetSetting(key string) (string, error) {
	query := `
		SELECT value FROM settings WHERE key = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var value string
	if err := r.dbpool.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		return "", err
	}

	return value, nil
}

func (r *Repository) SetSetting(key, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, key, value); err != nil {
		return err
	}

	return nil
}

// SetSettingIfAbsent は未登録のときだけ値を入れる（起動時の初期化用）
func (r *Repository) SetSettingIfAbsent(key, value string) (bool, error) {
	if _, err := r.GetSetting(key); err == nil {
		return false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, key, value)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
