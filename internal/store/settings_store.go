package store

import "context"

type SettingsStore struct {
	db DB
}

type Settings struct {
	UserID      string `db:"user_id"`
	Currency    string `db:"currency"`
	Language    string `db:"language"`
	Theme       string `db:"theme"`
	NotifyEmail bool   `db:"notify_email"`
	NotifyPush  bool   `db:"notify_push"`
	UpdatedAt   any    `db:"updated_at"`
}

// SettingsUpdate holds the fields of an upsert; nil fields keep the
// existing value, or the column default when no row exists yet.
type SettingsUpdate struct {
	Currency    *string
	Language    *string
	Theme       *string
	NotifyEmail *bool
	NotifyPush  *bool
}

func NewSettingsStore(db DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) GetByUser(ctx context.Context, userID string) (Settings, error) {
	var row Settings
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, currency, language, theme, notify_email, notify_push, updated_at
		FROM settings
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return Settings{}, err
	}
	return row, nil
}

func (s *SettingsStore) Upsert(ctx context.Context, tx Execer, userID string, update SettingsUpdate) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO settings (user_id, currency, language, theme, notify_email, notify_push)
		VALUES ($1,
		        COALESCE($2, 'USD'),
		        COALESCE($3, 'en'),
		        COALESCE($4, 'light'),
		        COALESCE($5, TRUE),
		        COALESCE($6, TRUE))
		ON CONFLICT (user_id) DO UPDATE
		SET currency = COALESCE($2, settings.currency),
		    language = COALESCE($3, settings.language),
		    theme = COALESCE($4, settings.theme),
		    notify_email = COALESCE($5, settings.notify_email),
		    notify_push = COALESCE($6, settings.notify_push),
		    updated_at = NOW()
	`, userID, update.Currency, update.Language, update.Theme, update.NotifyEmail, update.NotifyPush)
	return err
}
