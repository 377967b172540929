package database

import "time"

// Group is a Telegram chat the bot has seen a photo in.
// ID is the Telegram chat id; Name is refreshed on every observed photo.
type Group struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Image is the metadata row of one downloaded photo.
// ChatID and GroupID always hold the same value.
type Image struct {
	ID        int64     `db:"id"`
	Filename  string    `db:"filename"`
	FileID    string    `db:"file_id"`
	Sender    string    `db:"sender"`
	ChatID    int64     `db:"chat_id"`
	GroupID   int64     `db:"group_id"`
	Caption   string    `db:"caption"`
	CreatedAt time.Time `db:"created_at"`
}

// ImageFilter narrows ListImages. A nil GroupID or zero bound means unfiltered.
// The time range is half-open: From <= created_at < To.
type ImageFilter struct {
	GroupID *int64
	From    time.Time
	To      time.Time
}
