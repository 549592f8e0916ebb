package repository

import "github.com/Kosench/keyed-url-shortener/internal/database"

const entryColumns = "id, url_key, secret_key, target_url, is_active, clicks, created_at"

type queries struct {
	create            string
	existsByKey       string
	existsBySecretKey string
	getBySecretKey    string
	setActive         string
	incrementClicks   string
}

var dialectQueries = map[database.Driver]queries{
	database.SQLite: {
		create: `
		INSERT INTO urls (url_key, secret_key, target_url, is_active, clicks, created_at)
		VALUES (?, ?, ?, 1, 0, ?)
		ON CONFLICT DO NOTHING
		RETURNING id`,
		existsByKey:       `SELECT EXISTS(SELECT 1 FROM urls WHERE url_key = ?)`,
		existsBySecretKey: `SELECT EXISTS(SELECT 1 FROM urls WHERE secret_key = ?)`,
		getBySecretKey:    `SELECT ` + entryColumns + ` FROM urls WHERE secret_key = ?`,
		setActive: `
		UPDATE urls SET is_active = ?
		WHERE secret_key = ?
		RETURNING ` + entryColumns,
		incrementClicks: `
		UPDATE urls SET clicks = clicks + 1
		WHERE url_key = ? AND is_active
		RETURNING ` + entryColumns,
	},
	database.Postgres: {
		create: `
		INSERT INTO urls (url_key, secret_key, target_url, is_active, clicks, created_at)
		VALUES ($1, $2, $3, TRUE, 0, $4)
		ON CONFLICT DO NOTHING
		RETURNING id`,
		existsByKey:       `SELECT EXISTS(SELECT 1 FROM urls WHERE url_key = $1)`,
		existsBySecretKey: `SELECT EXISTS(SELECT 1 FROM urls WHERE secret_key = $1)`,
		getBySecretKey:    `SELECT ` + entryColumns + ` FROM urls WHERE secret_key = $1`,
		setActive: `
		UPDATE urls SET is_active = $1
		WHERE secret_key = $2
		RETURNING ` + entryColumns,
		incrementClicks: `
		UPDATE urls SET clicks = clicks + 1
		WHERE url_key = $1 AND is_active
		RETURNING ` + entryColumns,
	},
}
